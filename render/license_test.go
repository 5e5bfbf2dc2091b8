// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLicenseHeaders(t *testing.T) {
	const header = "// Copyright 2026 The gogpu Authors\n// SPDX-License-Identifier: BSD-3-Clause\n"
	files, err := filepath.Glob("*.go")
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(data), header) {
			t.Errorf("%s: missing BSD-3-Clause header", f)
		}
	}
}
