package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/suxatcode/concentric-layout/db"
	"github.com/suxatcode/concentric-layout/layout"
)

// Source queries a subgraph service over HTTP.
type Source struct {
	url    string
	client *http.Client
}

func NewSource(conf db.Config) *Source {
	return &Source{
		url:    conf.RemoteURL,
		client: &http.Client{Timeout: conf.RemoteTimeout},
	}
}

// request is the body understood by the subgraph service.
type request struct {
	Nodes struct {
		Nodes []string `json:"nodes"`
	} `json:"nodes"`
	CategoryCount struct {
		CategoryCount map[string]int `json:"categorycount"`
	} `json:"category_count"`
}

func newRequest(q db.Query) request {
	req := request{}
	req.Nodes.Nodes = q.Entities
	if req.Nodes.Nodes == nil {
		req.Nodes.Nodes = []string{}
	}
	req.CategoryCount.CategoryCount = make(map[string]int, len(q.CategoryCount))
	for c, n := range q.CategoryCount {
		req.CategoryCount.CategoryCount[strconv.Itoa(c)] = n
	}
	return req
}

func (s *Source) Dataset(ctx context.Context, q db.Query) (*layout.Dataset, error) {
	body, err := json.Marshal(newRequest(q))
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid remote url '%s'", s.url)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request to %s failed", s.url)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, errors.Errorf("%s responded with %d: %s", s.url, res.StatusCode, bytes.TrimSpace(msg))
	}
	ds, err := db.ReadDataset(res.Body, false)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid response from %s", s.url)
	}
	log.Ctx(ctx).Debug().Msgf("received %d nodes and %d links from %s", len(ds.Nodes), len(ds.Links), s.url)
	return ds, nil
}
