// Copyright 2026 fanjia1024
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

package ingest

import (
	"context"
	"path/filepath"
	"testing"

	einodoc "github.com/cloudwego/eino/components/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPDFLoader_Engines(t *testing.T) {
	for _, engine := range []string{"", PDFEngineLedongthuc, PDFEngineUnipdf} {
		l, err := NewPDFLoader(engine)
		require.NoError(t, err, engine)
		_, err = l.Load(context.Background(), einodoc.Source{URI: filepath.Join(t.TempDir(), "missing.pdf")})
		assert.Error(t, err, engine)
	}
	_, err := NewPDFLoader("pdfium")
	assert.Error(t, err)
}

func TestPDFLoader_EmptyURI(t *testing.T) {
	l, err := NewPDFLoader("")
	require.NoError(t, err)
	_, err = l.Load(context.Background(), einodoc.Source{URI: "file://"})
	assert.Error(t, err)
}
