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

package sqldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "AC/DC", `'AC/DC'`},
		{"single quote switches to double", "it's", `"it's"`},
		{"double quote stays single", `say "hi"`, `'say "hi"'`},
		{"both quotes escape single", `it's "x"`, `'it\'s "x"'`},
		{"backslash", `C:\temp`, `'C:\\temp'`},
		{"control whitespace", "a\nb\tc\r", `'a\nb\tc\r'`},
		{"non printable", "x\x01y", `'x\x01y'`},
		{"printable unicode", "Motörhead", `'Motörhead'`},
		{"empty", "", `''`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, quote(tc.in))
		})
	}
}

func TestPyRepr(t *testing.T) {
	assert.Equal(t, "None", pyRepr(nil))
	assert.Equal(t, "True", pyRepr(true))
	assert.Equal(t, "False", pyRepr(false))
	assert.Equal(t, "42", pyRepr(int64(42)))
	assert.Equal(t, "1.0", pyRepr(1.0))
	assert.Equal(t, "0.99", pyRepr(0.99))
	assert.Equal(t, `b'ab'`, pyRepr([]byte("ab")))
}

func TestTupleRepr(t *testing.T) {
	assert.Equal(t, "(3,)", tupleRepr([]any{int64(3)}))
	assert.Equal(t, "(1, 'AC/DC')", tupleRepr([]any{int64(1), "AC/DC"}))
	assert.Equal(t, `('C:\\temp', "it's")`, tupleRepr([]any{`C:\temp`, "it's"}))
	assert.Equal(t, "(None, 'x')", tupleRepr([]any{nil, "x"}))
}
