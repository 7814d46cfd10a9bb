package snapshot

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theimperious1/OCRAutoModerator/automod/rules"
)

func ruleDoc(n int) string {
	doc := ""
	for i := 1; i <= n; i++ {
		doc += fmt.Sprintf("---\ntype: any\nrule: [\"word%d\"]\naction: report\naction_reason: r%d\npriority: %d\n", i, i, i)
	}
	return doc
}

func TestTableBasics(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	tbl := NewTable()
	assert.Nil(tbl.Get("cats"))

	doc := ruleDoc(2)
	rs, err := rules.Load(doc)
	require.NoError(err)

	s1 := New("Cats", rs, doc)
	assert.Equal("cats", s1.Community)
	assert.Nil(tbl.Replace(s1))
	assert.Same(s1, tbl.Get("CATS"))
	assert.Same(s1, tbl.Get(" cats "))

	s2 := New("cats", rs, doc+"# edited\n")
	assert.NotEqual(s1.Revision, s2.Revision)
	assert.Same(s1, tbl.Replace(s2))
	assert.Same(s2, tbl.Get("cats"))

	tbl.Replace(New("dogs", rs, doc))
	assert.Equal([]string{"cats", "dogs"}, tbl.Communities())
	assert.Equal(2, tbl.Len())

	tbl.Remove("Dogs")
	assert.Equal([]string{"cats"}, tbl.Communities())
}

// readers always see a complete rule set: the rule count always matches the document it came from
func TestTableConcurrentReplace(t *testing.T) {
	assert := assert.New(t)

	tbl := NewTable()
	sets := make([]*rules.RuleSet, 5)
	for i := range sets {
		rs, err := rules.Load(ruleDoc(i + 1))
		assert.NoError(err)
		sets[i] = rs
	}
	tbl.Replace(New("cats", sets[0], "0"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			n := i % len(sets)
			tbl.Replace(New("cats", sets[n], fmt.Sprint(n)))
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				s := tbl.Get("cats")
				if !assert.NotNil(s) {
					return
				}
				assert.Equal(s.Rules.Len(), len(s.Rules.Rules))
				assert.Equal(s.Rules.Rules[len(s.Rules.Rules)-1].Priority, s.Rules.Len())
			}
		}()
	}
	wg.Wait()
}
