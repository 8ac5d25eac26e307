package service

import (
	"net/http"
	"testing"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/apperr"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

func TestRuleInputValidation(t *testing.T) {
	s := &RuleService{}

	tests := []struct {
		name string
		in   RuleInput
		code string
	}{
		{"valid", RuleInput{Tier: 1, RequiredMerit: 50000, AllowedLevel: models.LevelEither}, ""},
		{"zero merit is allowed", RuleInput{Tier: 3, RequiredMerit: 0, AllowedLevel: models.LevelNineOnly}, ""},
		{"zero tier", RuleInput{Tier: 0, RequiredMerit: 1, AllowedLevel: models.LevelEither}, apperr.CodeInvalidTier},
		{"negative tier", RuleInput{Tier: -2, RequiredMerit: 1, AllowedLevel: models.LevelEither}, apperr.CodeInvalidTier},
		{"negative merit", RuleInput{Tier: 1, RequiredMerit: -1, AllowedLevel: models.LevelEither}, apperr.CodeInvalidRequest},
		{"unknown level", RuleInput{Tier: 1, RequiredMerit: 1, AllowedLevel: "level_11_only"}, apperr.CodeInvalidLevel},
		{"empty level", RuleInput{Tier: 1, RequiredMerit: 1}, apperr.CodeInvalidLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.validate(tt.in)
			if tt.code == "" {
				if err != nil {
					t.Fatalf("validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("validate() = nil, want error")
			}
			if got := apperr.CodeOf(err); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
			if status := apperr.HTTPStatus(err); status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
		})
	}
}

func TestMemberInputValidation(t *testing.T) {
	s := &MemberService{}

	if err := s.validate(MemberInput{Name: "Lu Xun", Merit: 120000}); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	if err := s.validate(MemberInput{Merit: 1}); apperr.CodeOf(err) != apperr.CodeInvalidRequest {
		t.Errorf("missing name: code = %s, want %s", apperr.CodeOf(err), apperr.CodeInvalidRequest)
	}

	if err := s.validate(MemberInput{Name: "Lu Xun", Merit: -5}); apperr.CodeOf(err) != apperr.CodeInvalidRequest {
		t.Errorf("negative merit: code = %s, want %s", apperr.CodeOf(err), apperr.CodeInvalidRequest)
	}
}
