package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func briefWithTop(scales ...BriefScale) *Brief {
	return &Brief{TopScales: scales}
}

func TestInferStyle(t *testing.T) {
	tests := []struct {
		name  string
		brief *Brief
		want  string
	}{
		{"no scales", briefWithTop(), StyleBalanced},
		{"close spread", briefWithTop(BriefScale{ScaleID: "logic", Normalized: 80}, BriefScale{ScaleID: "feel", Normalized: 75}), StyleBalanced},
		{"analytical", briefWithTop(BriefScale{ScaleID: "Systems_Thinking", Normalized: 80}, BriefScale{ScaleID: "feel", Normalized: 40}), StyleAnalytical},
		{"intuitive", briefWithTop(BriefScale{ScaleID: "gut_instinct", Normalized: 90}, BriefScale{ScaleID: "logic", Normalized: 10}), StyleIntuitive},
		{"single scale", briefWithTop(BriefScale{ScaleID: "creative", Normalized: 10}), StyleIntuitive},
		{"unknown keyword", briefWithTop(BriefScale{ScaleID: "energy", Normalized: 90}, BriefScale{ScaleID: "calm", Normalized: 10}), StyleBalanced},
		{"analytical wins over intuitive keywords", briefWithTop(BriefScale{ScaleID: "logical_feel", Normalized: 90}), StyleAnalytical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferStyle(tt.brief))
		})
	}
}

func TestStyleCardFor(t *testing.T) {
	card := StyleCardFor("intuitive")
	assert.Equal(t, "Intuitive", card.Label)
	assert.Len(t, card.DoList, 4)
	assert.Len(t, card.DontList, 3)

	assert.Equal(t, StyleBalanced, StyleCardFor("neutral").ID)
}
