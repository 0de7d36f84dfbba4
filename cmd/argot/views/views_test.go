// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package views

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configPath = filepath.Join("..", "..", "..", "analysis", "model", "testdata", "config.yaml")

func TestPrintViews(t *testing.T) {
	flags, err := NewFlags([]string{"-config", configPath, "-model", "receiver.yaml", "-cycles", "5"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(flags, &out))
	s := out.String()
	assert.Contains(t, s, "Application view: 3 nodes")
	assert.Contains(t, s, "One-hop view: 5 nodes")
	assert.Contains(t, s, "Boundary view: 4 nodes")
	assert.Contains(t, s, "onReceive")
	assert.Contains(t, s, "->")
}

func TestPrintOneView(t *testing.T) {
	flags, err := NewFlags([]string{"-config", configPath, "-model", "receiver.yaml", "-view", "boundary"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(flags, &out))
	assert.Contains(t, out.String(), "Boundary view:")
	assert.NotContains(t, out.String(), "Application view:")
}

func TestViewsErrors(t *testing.T) {
	_, err := NewFlags([]string{"-view", "library"})
	assert.Error(t, err)

	flags, err := NewFlags([]string{"-config", configPath, "-model", "bad_field.yaml"})
	require.NoError(t, err)
	assert.ErrorContains(t, run(flags, &bytes.Buffer{}), "could not build the views")
}
