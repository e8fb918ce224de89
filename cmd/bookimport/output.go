package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/JonMunkholm/bookimport/internal/importer"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeText(w io.Writer, st importer.Status) {
	if st.FileName != "" {
		fmt.Fprintf(w, "%s (%d filas)\n", st.FileName, st.Rows)
	}
	fmt.Fprintln(w, st.Message)
}
