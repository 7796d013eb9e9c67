package similarity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/testdesk/backend/internal/similarity"
)

func TestFeatures(t *testing.T) {
	eng := newPlainEngine()

	f := eng.Features("Login fails. Login retry fails again!")

	assert.Equal(t, 37, f.CharCount)
	assert.Equal(t, 6, f.WordCount)
	assert.Equal(t, 3, f.SentenceCount)
	assert.Equal(t, 6, f.TokenCount)
	assert.Equal(t, 4, f.UniqueTokens)
	assert.Equal(t, []similarity.TokenCount{
		{Token: "login", Count: 2},
		{Token: "fails", Count: 2},
		{Token: "retry", Count: 1},
		{Token: "again", Count: 1},
	}, f.MostCommonTokens)
	assert.InDelta(t, 5.0, f.AvgTokenLength, 1e-9)
	assert.InDelta(t, 0.667, f.LexicalDiversity, 1e-9)
}

func TestFeatures_Empty(t *testing.T) {
	eng := newPlainEngine()

	f := eng.Features("")
	assert.Equal(t, 0, f.CharCount)
	assert.Equal(t, 0, f.TokenCount)
	assert.Equal(t, 1, f.SentenceCount)
	assert.Empty(t, f.MostCommonTokens)
	assert.Equal(t, 0.0, f.AvgTokenLength)
}

func TestFeatures_CountsRunes(t *testing.T) {
	eng := newPlainEngine()

	f := eng.Features("登录 失败。重试 失败！")
	assert.Equal(t, 12, f.CharCount)
	assert.Equal(t, 3, f.SentenceCount)
	assert.Equal(t, []similarity.TokenCount{{Token: "失败", Count: 2}, {Token: "登录", Count: 1}, {Token: "重试", Count: 1}}, f.MostCommonTokens)
}
