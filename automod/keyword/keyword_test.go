package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("a photo of a kitten", Fold("a photo of a KITTEN"))
	assert.Equal("strasse", Fold("STRASSE"))
	assert.Equal(Fold("Straße"), Fold("STRASSE"))
	// composed and decomposed forms fold the same
	assert.Equal(Fold("café"), Fold("CAFÉ"))
}

func TestContainsFold(t *testing.T) {
	assert := assert.New(t)

	assert.True(ContainsFold("a photo of a KITTEN", "kitten"))
	assert.True(ContainsFold("Buy Now!", "BUY NOW"))
	assert.False(ContainsFold("kitty", "kitten"))
	assert.True(ContainsFold("anything", ""))
}

func TestFirstMatch(t *testing.T) {
	assert := assert.New(t)

	pats := FoldAll([]string{"Puppy", "KITTEN", "kit"})
	assert.Equal(1, FirstMatch(Fold("A Kitten!"), pats))
	assert.Equal(0, FirstMatch(Fold("puppy and kitten"), pats))
	assert.Equal(-1, FirstMatch(Fold("a dog"), pats))
}
