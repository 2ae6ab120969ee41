// Copyright (c) 2024 Searchstack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package admin

import (
	"encoding/json"
	"strings"
	"time"

	resty "github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const (
	// AnnotationsIndexName is the required internal annotations index.
	AnnotationsIndexName = ".ml-annotations-000001"
	// AnnotationsReadAlias and AnnotationsWriteAlias are its aliases.
	AnnotationsReadAlias  = ".ml-annotations-read"
	AnnotationsWriteAlias = ".ml-annotations-write"

	defaultTimeout = 30 * time.Second
)

// Config is the connection config of the administrative REST API.
type Config struct {
	// Endpoint is the base URL, e.g. http://localhost:9200
	Endpoint string `yaml:"endpoint" validate:"nonzero"`
	// Timeout bounds each remote call.
	Timeout time.Duration `yaml:"timeout"`
}

// restClient implements Client over the cluster's REST API. Each call
// runs on its own goroutine; the callback fires when the HTTP exchange
// completes.
type restClient struct {
	http *resty.Client
}

// NewRESTClient creates a REST-backed administrative client.
func NewRESTClient(cfg Config) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &restClient{
		http: resty.New().
			SetBaseURL(cfg.Endpoint).
			SetTimeout(timeout),
	}
}

// wire formats of the REST responses
type settingsBody struct {
	Settings map[string]interface{} `json:"settings"`
}

type aliasBody struct {
	IsHidden      *bool           `json:"is_hidden"`
	IsWriteIndex  *bool           `json:"is_write_index"`
	Filter        json.RawMessage `json:"filter"`
	IndexRouting  string          `json:"index_routing"`
	SearchRouting string          `json:"search_routing"`
}

type aliasesBody struct {
	Aliases map[string]aliasBody `json:"aliases"`
}

func (c *restClient) GetSettings(req *GetSettingsRequest, cb func(*SettingsResponse, error)) {
	go func() {
		raw := map[string]settingsBody{}
		httpResp, err := c.http.R().
			SetResult(&raw).
			SetQueryParam("flat_settings", "true").
			SetQueryParam("expand_wildcards", "open,closed,hidden").
			SetQueryParam("ignore_unavailable", "true").
			Get("/" + strings.Join(req.Indices, ",") + "/_settings")
		if err = checkResponse(httpResp, err); err != nil {
			cb(nil, err)
			return
		}
		resp := &SettingsResponse{Indices: make(map[string]Settings, len(raw))}
		for index, body := range raw {
			resp.Indices[index] = Settings(body.Settings)
		}
		cb(resp, nil)
	}()
}

func (c *restClient) UpdateSettings(req *UpdateSettingsRequest, cb func(*Ack, error)) {
	go func() {
		ack := &Ack{}
		httpResp, err := c.http.R().
			SetBody(req.Settings).
			SetResult(ack).
			SetQueryParam("expand_wildcards", "open,closed,hidden").
			SetQueryParam("ignore_unavailable", "true").
			Put("/" + strings.Join(req.Indices, ",") + "/_settings")
		if err = checkResponse(httpResp, err); err != nil {
			cb(nil, err)
			return
		}
		cb(ack, nil)
	}()
}

func (c *restClient) GetAliases(req *GetAliasesRequest, cb func(*AliasesResponse, error)) {
	go func() {
		raw := map[string]aliasesBody{}
		httpResp, err := c.http.R().
			SetResult(&raw).
			SetQueryParam("expand_wildcards", "open,closed,hidden").
			SetQueryParam("ignore_unavailable", "true").
			Get("/" + strings.Join(req.Indices, ",") + "/_alias")
		if err = checkResponse(httpResp, err); err != nil {
			cb(nil, err)
			return
		}
		resp := &AliasesResponse{Aliases: make(map[string][]Alias, len(raw))}
		for index, body := range raw {
			aliases := make([]Alias, 0, len(body.Aliases))
			for name, meta := range body.Aliases {
				aliases = append(aliases, Alias{
					Name:          name,
					Hidden:        meta.IsHidden,
					WriteIndex:    meta.IsWriteIndex,
					Filter:        string(meta.Filter),
					IndexRouting:  meta.IndexRouting,
					SearchRouting: meta.SearchRouting,
				})
			}
			resp.Aliases[index] = aliases
		}
		cb(resp, nil)
	}()
}

func (c *restClient) UpdateAliases(req *UpdateAliasesRequest, cb func(*Ack, error)) {
	go func() {
		actions := make([]map[string]interface{}, 0, len(req.Actions))
		for _, action := range req.Actions {
			add := map[string]interface{}{
				"index":     action.Index,
				"alias":     action.Alias.Name,
				"is_hidden": action.Alias.IsHidden(),
			}
			if action.Alias.WriteIndex != nil {
				add["is_write_index"] = *action.Alias.WriteIndex
			}
			if action.Alias.Filter != "" {
				add["filter"] = json.RawMessage(action.Alias.Filter)
			}
			if action.Alias.IndexRouting != "" {
				add["index_routing"] = action.Alias.IndexRouting
			}
			if action.Alias.SearchRouting != "" {
				add["search_routing"] = action.Alias.SearchRouting
			}
			actions = append(actions, map[string]interface{}{"add": add})
		}

		ack := &Ack{}
		httpResp, err := c.http.R().
			SetBody(map[string]interface{}{"actions": actions}).
			SetResult(ack).
			Post("/_aliases")
		if err = checkResponse(httpResp, err); err != nil {
			cb(nil, err)
			return
		}
		cb(ack, nil)
	}()
}

func (c *restClient) DeleteTemplate(req *DeleteTemplateRequest, cb func(*Ack, error)) {
	go func() {
		ack := &Ack{}
		httpResp, err := c.http.R().
			SetResult(ack).
			Delete("/_template/" + req.Name)
		if err = checkResponse(httpResp, err); err != nil {
			cb(nil, err)
			return
		}
		cb(ack, nil)
	}()
}

func (c *restClient) CreateAnnotationsIndex(cb func(*Ack, error)) {
	go func() {
		body := map[string]interface{}{
			"settings": map[string]interface{}{
				SettingIndexHidden: true,
			},
			"aliases": map[string]interface{}{
				AnnotationsReadAlias:  map[string]interface{}{"is_hidden": true},
				AnnotationsWriteAlias: map[string]interface{}{"is_hidden": true},
			},
		}
		ack := &Ack{}
		httpResp, err := c.http.R().
			SetBody(body).
			SetResult(ack).
			Put("/" + AnnotationsIndexName)
		if err != nil {
			cb(nil, err)
			return
		}
		// creating an index that already exists is success for an
		// idempotent ensure
		if httpResp.StatusCode() == 400 &&
			strings.Contains(httpResp.String(), "resource_already_exists_exception") {
			cb(&Ack{Acknowledged: true}, nil)
			return
		}
		if httpResp.IsError() {
			cb(nil, errors.Errorf(
				"admin API returned status %d: %s",
				httpResp.StatusCode(), httpResp.String()))
			return
		}
		cb(ack, nil)
	}()
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return errors.Errorf(
			"admin API returned status %d: %s",
			resp.StatusCode(), resp.String())
	}
	return nil
}
