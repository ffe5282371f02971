// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ChatResult is the assistant's answer to one query.
type ChatResult struct {
	Response string  `json:"response"`
	Sources  Sources `json:"source"`
}

// Sources decodes the "source" field, which the backend sends as a single
// string, an empty string for none, or a list of strings.
type Sources []string

func (s *Sources) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = nil
		return nil
	}

	if data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		if one = strings.TrimSpace(one); one == "" {
			*s = nil
		} else {
			*s = Sources{one}
		}
		return nil
	}

	var many []any
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("source: expected string or list: %w", err)
	}
	out := make(Sources, 0, len(many))
	for _, v := range many {
		var str string
		switch t := v.(type) {
		case string:
			str = t
		case nil:
			continue
		default:
			str = fmt.Sprint(t)
		}
		if str = strings.TrimSpace(str); str != "" {
			out = append(out, str)
		}
	}
	if len(out) == 0 {
		out = nil
	}
	*s = out
	return nil
}

// UploadResult is the backend's confirmation of a stored PDF.
type UploadResult struct {
	Filename     string `json:"filename"`
	ChunksStored int    `json:"chunks_stored"`
	Message      string `json:"message"`
}

// DeleteResult confirms a removal.
type DeleteResult struct {
	Message string `json:"message"`
}

// DocumentInfo is one entry of the document listing. Older backends send
// bare names; newer ones send {name, size}.
type DocumentInfo struct {
	Name      string
	Size      int64
	SizeKnown bool
}

func (d *DocumentInfo) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*d = DocumentInfo{}
		return json.Unmarshal(data, &d.Name)
	}

	var obj struct {
		Name string   `json:"name"`
		Size *float64 `json:"size"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("document entry: expected string or object: %w", err)
	}
	*d = DocumentInfo{Name: obj.Name}
	if obj.Size != nil && *obj.Size >= 0 {
		d.Size = int64(math.Round(*obj.Size))
		d.SizeKnown = true
	}
	return nil
}

type listResponse struct {
	PDFs []DocumentInfo `json:"pdfs"`
}
