package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDesignSpaceGenerator_Deterministic(t *testing.T) {
	cfg := GeneratorConfig{ConditionsPerParadigm: 3, Seed: 7}

	a := NewDesignSpaceGenerator(cfg).Generate()
	b := NewDesignSpaceGenerator(cfg).Generate()

	assert.Len(t, a.Rows, 12)
	assert.Equal(t, a, b)
}

func TestDesignSpaceGenerator_FillsEveryHeader(t *testing.T) {
	table := NewDesignSpaceGenerator(DefaultGeneratorConfig()).Generate()
	for i, row := range table.Rows {
		for _, h := range table.Headers {
			_, ok := row[h]
			assert.True(t, ok, "row %d lacks %q", i, h)
		}
	}
}

func TestFixtureIsFresh(t *testing.T) {
	a := Fixture()
	a.Rows[0]["RSI"] = "changed"
	assert.Equal(t, "1000", Fixture().Rows[0]["RSI"])
}
