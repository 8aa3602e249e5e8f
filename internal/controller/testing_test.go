package controller

import (
	"bytes"
	"context"

	"github.com/rs/zerolog"
	"github.com/suxatcode/concentric-layout/layout"
)

// testDataset has one node per category, pairwise linked.
var testDataset = layout.Dataset{
	Nodes: []layout.DatasetNode{
		{ID: "A", Category: 1},
		{ID: "B", Category: 2},
		{ID: "C", Category: 3},
		{ID: "D", Category: 4},
	},
	Links: []layout.DatasetLink{
		{Source: "A", Target: "B", Freq: 5},
		{Source: "A", Target: "C", Freq: 5},
		{Source: "A", Target: "D", Freq: 5},
		{Source: "B", Target: "C", Freq: 5},
		{Source: "B", Target: "D", Freq: 5},
		{Source: "C", Target: "D", Freq: 5},
	},
}

func testContext(level zerolog.Level) (context.Context, *bytes.Buffer) {
	logBuffer := bytes.NewBuffer([]byte{})
	logger := zerolog.New(logBuffer).Level(level).With().Str("test", "controller").Logger()
	return logger.WithContext(context.Background()), logBuffer
}
