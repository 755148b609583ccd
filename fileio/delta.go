// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fileio

import (
	"context"
	"fmt"

	delta_sharing "github.com/magpierre/go_delta_sharing_client"

	"parqcel/datatable"
	"parqcel/frame"
)

// TableRef names a table exposed by a Delta Sharing server.
type TableRef struct {
	Share  string
	Schema string
	Name   string
}

func (r TableRef) String() string {
	return r.Share + "." + r.Schema + "." + r.Name
}

// ListDeltaTables lists every table the profile can read.
func ListDeltaTables(ctx context.Context, profile string) ([]TableRef, error) {
	client, err := delta_sharing.NewSharingClientV2FromString(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create Delta Sharing client: %w", err)
	}
	tables, _, err := client.ListAllTables_V2(ctx, 0, "", 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list all tables: %w", err)
	}
	out := make([]TableRef, 0, len(tables))
	for _, t := range tables {
		out = append(out, TableRef{Share: t.Share, Schema: t.Schema, Name: t.Name})
	}
	return out, nil
}

// LoadDeltaSharing downloads every data file of a shared table and stacks
// them into one table.
func LoadDeltaSharing(ctx context.Context, profile, share, schema, table string) (*frame.Table, error) {
	client, err := delta_sharing.NewSharingClientV2FromString(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create Delta Sharing client: %w", err)
	}
	ref := delta_sharing.Table{Name: table, Share: share, Schema: schema}

	resp, err := client.ListFilesInTable(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	if len(resp.AddFiles) == 0 {
		return nil, fmt.Errorf("%w: no files available for table %s.%s.%s", datatable.ErrEmptyData, share, schema, table)
	}

	parts := make([]*frame.Table, 0, len(resp.AddFiles))
	for _, f := range resp.AddFiles {
		arrowTable, err := delta_sharing.LoadArrowTable(ctx, client, ref, f.Id)
		if err != nil {
			return nil, fmt.Errorf("failed to load file %s: %w", f.Id, err)
		}
		part, err := frame.FromArrowTable(ctx, arrowTable)
		arrowTable.Release()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return frame.Concat(parts...)
}
