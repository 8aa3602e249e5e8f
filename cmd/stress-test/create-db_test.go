package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/suxatcode/concentric-layout/layout"
)

func TestGenerate(t *testing.T) {
	assert := assert.New(t)
	ds := generate(200, 4, 3, 7)
	assert.Len(ds.Nodes, 200)
	assert.NotEmpty(ds.Links)
	assert.LessOrEqual(len(ds.Links), 199*3)
	_, err := layout.NewGraph(*ds, 4)
	assert.NoError(err, "generated datasets are valid")
	assert.Equal(ds, generate(200, 4, 3, 7), "same seed, same dataset")
}
