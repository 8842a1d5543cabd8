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

func TestJSONObjectRoundTrip(t *testing.T) {
	obj := JSONObject{"key": "value", "n": float64(3)}
	raw, err := obj.Value()
	require.NoError(t, err)

	var back JSONObject
	require.NoError(t, back.Scan(raw))
	assert.Equal(t, obj, back)

	var nilObj JSONObject
	v, err := nilObj.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, back.Scan(nil))
	assert.Empty(t, back)

	assert.Error(t, back.Scan(42))
}

func TestJSONArrayRoundTrip(t *testing.T) {
	arr := JSONArray{{"a": float64(1)}, {"b": float64(2)}}
	raw, err := arr.Value()
	require.NoError(t, err)

	var back JSONArray
	require.NoError(t, back.Scan(raw))
	assert.Equal(t, arr, back)

	require.NoError(t, back.Scan(nil))
	assert.Empty(t, back)
}
