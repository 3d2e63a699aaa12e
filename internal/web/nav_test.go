package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagesOrder(t *testing.T) {
	var ids, labels []string
	for _, p := range Pages() {
		ids = append(ids, p.ID)
		labels = append(labels, p.Label)
	}

	assert.Equal(t, []string{"diabetes", "heart", "parkinsons", "breast-cancer", "chatbot"}, ids)
	assert.Equal(t, []string{
		"Diabetes Prediction",
		"Heart Disease Prediction",
		"Parkinsons Prediction",
		"Breast Cancer Prediction",
		"Medical ChatBot",
	}, labels)
	assert.Equal(t, "diabetes", DefaultPage().ID)
}

func TestResolve(t *testing.T) {
	p, ok := Resolve("chatbot")
	assert.True(t, ok)
	assert.True(t, p.IsChat())

	p, ok = Resolve("heart")
	assert.True(t, ok)
	assert.False(t, p.IsChat())
	assert.EqualValues(t, "heart", p.Disease)

	_, ok = Resolve("")
	assert.False(t, ok)
}

func TestNavForMarksOneActive(t *testing.T) {
	active := 0
	for _, item := range navFor("parkinsons") {
		if item.Active {
			active++
			assert.Equal(t, "parkinsons", item.ID)
		}
	}
	assert.Equal(t, 1, active)
}
