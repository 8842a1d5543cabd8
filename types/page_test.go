/*
 * Copyright 2026 keelstack.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequestDefaults(t *testing.T) {
	p := NewDefaultPageRequest(0, 0)
	assert.Equal(t, 1, p.GetPage())
	assert.Equal(t, 10, p.GetPageSize())
	assert.Equal(t, 0, p.GetOffset())

	p = NewDefaultPageRequest(3, 20)
	assert.Equal(t, 40, p.GetOffset())
}

func TestPageRequestFilterAndOrders(t *testing.T) {
	filter := NewQueryFilter("name = ?", "a")
	p := NewPageRequest(2, 5, filter, []string{"name DESC"})

	assert.Same(t, filter, p.GetFilter())
	assert.Equal(t, []string{"name DESC"}, p.GetOrders())

	assert.Nil(t, NewPageRequestWithOrders(1, 5, nil).GetFilter())
	assert.Empty(t, NewPageRequestWithFilter(1, 5, filter).GetOrders())
}

func TestNewEqualityFilter(t *testing.T) {
	assert.Nil(t, NewEqualityFilter(nil))

	filter := NewEqualityFilter(map[string]interface{}{
		"b_col": 2,
		"a_col": 1,
	})
	require.NotNil(t, filter)
	// Columns are sorted for a deterministic clause.
	assert.Equal(t, "a_col = ? AND b_col = ?", filter.Schema)
	assert.Equal(t, []interface{}{1, 2}, filter.Args)
}

func TestNewDefaultPagination(t *testing.T) {
	p := NewDefaultPagination[string](2, 15)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 15, p.PageSize)
	assert.Zero(t, p.Total)
	assert.Empty(t, p.Items)
}
