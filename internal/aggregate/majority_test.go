package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTally(t *testing.T) {
	p := Tally([]string{"Response A", "Response B", "Response A", ""})
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, []string{"Response A"}, p.Winners)
	assert.False(t, p.IsTie)
}

func TestTallyThreeWayTie(t *testing.T) {
	p := Tally([]string{"Response B", "Response A", "Response C"})
	assert.True(t, p.IsTie)
	assert.Equal(t, []string{"Response A", "Response B", "Response C"}, p.Winners)
}

func TestTallyAllEmpty(t *testing.T) {
	p := Tally([]string{"", ""})
	assert.Equal(t, 0, p.Total)
	assert.Empty(t, p.Winners)
	assert.False(t, p.IsTie)
}

func TestMajorityVerdict(t *testing.T) {
	tests := []struct {
		name     string
		verdicts []string
		want     string
	}{
		{"clear majority", []string{VerdictApprove, VerdictApprove, VerdictReject}, VerdictApprove},
		{"three-way tie", []string{VerdictApprove, VerdictRevise, VerdictReject}, VerdictRevise},
		{"tie involving revise", []string{VerdictApprove, VerdictApprove, VerdictRevise, VerdictRevise}, VerdictRevise},
		{"approve reject tie", []string{VerdictApprove, VerdictReject}, VerdictRevise},
		{"no verdicts", nil, VerdictRevise},
		{"single juror", []string{VerdictReject}, VerdictReject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MajorityVerdict(tt.verdicts))
		})
	}
}

func TestClaimConsensus(t *testing.T) {
	tests := []struct {
		name     string
		verdicts []string
		want     string
	}{
		{"clear majority", []string{ClaimVerified, ClaimVerified, ClaimDisputed}, ClaimVerified},
		{"verified disputed tie", []string{ClaimVerified, ClaimDisputed}, ClaimDisputed},
		{"tie with unverifiable", []string{ClaimVerified, ClaimUnverifiable}, ClaimVerified},
		{"disputed unverifiable tie", []string{ClaimDisputed, ClaimUnverifiable}, ClaimDisputed},
		{"three-way tie", []string{ClaimVerified, ClaimDisputed, ClaimUnverifiable}, ClaimDisputed},
		{"empty", nil, ClaimUnverifiable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClaimConsensus(tt.verdicts))
		})
	}
}
