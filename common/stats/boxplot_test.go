package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDescribeOddCount(t *testing.T) {
	s, ok := Describe([]float64{1, 2, 3, 4, 5})
	if !ok {
		t.Fatal("Describe returned not ok for non-empty input")
	}

	if s.Count != 5 {
		t.Errorf("Count = %d, want 5", s.Count)
	}
	if !almostEqual(s.Median, 3) {
		t.Errorf("Median = %v, want 3", s.Median)
	}
	if !almostEqual(s.Q1, 2) {
		t.Errorf("Q1 = %v, want 2", s.Q1)
	}
	if !almostEqual(s.Q3, 4) {
		t.Errorf("Q3 = %v, want 4", s.Q3)
	}
	if !almostEqual(s.Mean, 3) {
		t.Errorf("Mean = %v, want 3", s.Mean)
	}
	if len(s.Outliers) != 0 {
		t.Errorf("Outliers = %v, want none", s.Outliers)
	}
}

func TestDescribeEvenCountInterpolates(t *testing.T) {
	s, ok := Describe([]float64{1, 2, 3, 4})
	if !ok {
		t.Fatal("Describe returned not ok")
	}

	if !almostEqual(s.Median, 2.5) {
		t.Errorf("Median = %v, want 2.5", s.Median)
	}
	if !almostEqual(s.Q1, 1.75) {
		t.Errorf("Q1 = %v, want 1.75", s.Q1)
	}
	if !almostEqual(s.Q3, 3.25) {
		t.Errorf("Q3 = %v, want 3.25", s.Q3)
	}
}

func TestDescribeUnsortedInput(t *testing.T) {
	s, ok := Describe([]float64{5, 1, 4, 2, 3})
	if !ok {
		t.Fatal("Describe returned not ok")
	}
	if !almostEqual(s.Median, 3) {
		t.Errorf("Median = %v, want 3 regardless of input order", s.Median)
	}
}

func TestDescribeOutliers(t *testing.T) {
	// 100 sits far beyond Q3 + 1.5*IQR for this cluster.
	s, ok := Describe([]float64{10, 11, 12, 13, 14, 100})
	if !ok {
		t.Fatal("Describe returned not ok")
	}

	if len(s.Outliers) != 1 || !almostEqual(s.Outliers[0], 100) {
		t.Fatalf("Outliers = %v, want [100]", s.Outliers)
	}
	if !almostEqual(s.Max, 14) {
		t.Errorf("Max (upper whisker) = %v, want 14 with the outlier excluded", s.Max)
	}
	if s.Count != 6 {
		t.Errorf("Count = %d, want 6 (outliers still count)", s.Count)
	}
}

func TestDescribeSingleValue(t *testing.T) {
	s, ok := Describe([]float64{42})
	if !ok {
		t.Fatal("Describe returned not ok")
	}

	for name, got := range map[string]float64{
		"Min": s.Min, "Q1": s.Q1, "Median": s.Median, "Q3": s.Q3, "Max": s.Max, "Mean": s.Mean,
	} {
		if !almostEqual(got, 42) {
			t.Errorf("%s = %v, want 42", name, got)
		}
	}
}

func TestDescribeIdenticalValues(t *testing.T) {
	s, ok := Describe([]float64{7, 7, 7, 7})
	if !ok {
		t.Fatal("Describe returned not ok")
	}
	if len(s.Outliers) != 0 {
		t.Errorf("Outliers = %v, want none when IQR is zero and all values equal", s.Outliers)
	}
	if !almostEqual(s.Min, 7) || !almostEqual(s.Max, 7) {
		t.Errorf("whiskers = [%v, %v], want [7, 7]", s.Min, s.Max)
	}
}

func TestDescribeEmpty(t *testing.T) {
	if _, ok := Describe(nil); ok {
		t.Error("Describe(nil) ok = true, want false")
	}
	if _, ok := Describe([]float64{}); ok {
		t.Error("Describe(empty) ok = true, want false")
	}
}

func TestDescribeDoesNotMutateInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Describe(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Error("Describe must not sort the caller's slice")
	}
}

func BenchmarkDescribe_SeasonOfEntries(b *testing.B) {
	values := make([]float64, 5000)
	for i := range values {
		values[i] = float64((i * 7919) % 100000)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Describe(values)
	}
}
