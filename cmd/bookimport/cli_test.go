package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/bookimport/internal/importer"
)

const header = "isbn,editorial,titulo,autor,tipo_tapa,numero_paginas,idioma_original,numero_edicion,fecha_edicion,pais_edicion,precio,moneda,descuento_distribuidor,resumen_libro\n"

func writeCSV(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "libros.csv")
	data := header
	for _, r := range rows {
		data += r + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

const goodRow = "9780306406157,Planeta,Uno,Autor,Blanda,100,Español,1,2021-01-01,Chile,9990,CLP,10,Resumen."
const badRow = "9780306406157,Planeta,,Autor,Blanda,100,Español,1,2021-01-01,Chile,9990,CLP,10,Resumen."

func isolateEnv(t *testing.T, uploadURL string) {
	t.Setenv("CATALOG_UPLOAD_URL", uploadURL)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")
	t.Setenv("REQUIRE_API_KEY", "false")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate_OK(t *testing.T) {
	isolateEnv(t, "http://localhost:1/upload/")

	out, err := run(t, "validate", writeCSV(t, goodRow, goodRow))
	require.NoError(t, err)
	assert.Contains(t, out, "Validación OK: 2 filas detectadas.")
}

func TestValidate_Failure(t *testing.T) {
	isolateEnv(t, "http://localhost:1/upload/")

	out, err := run(t, "validate", writeCSV(t, goodRow, badRow))
	assert.ErrorIs(t, err, errImportFailed)
	assert.Contains(t, out, "Fila 3: titulo: Campo obligatorio.")
}

func TestValidate_JSON(t *testing.T) {
	isolateEnv(t, "http://localhost:1/upload/")

	out, err := run(t, "validate", "--json", writeCSV(t, badRow))
	assert.ErrorIs(t, err, errImportFailed)

	var st importer.Status
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, importer.StateRowValidationFailed, st.State)
	require.Len(t, st.Failures, 1)
	assert.Equal(t, 2, st.Failures[0].Line)
}

func TestValidate_MissingFile(t *testing.T) {
	isolateEnv(t, "http://localhost:1/upload/")

	_, err := run(t, "validate", filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestSubmit(t *testing.T) {
	var received int
	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Rows []json.RawMessage `json:"rows"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		received = len(payload.Rows)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true,"created":2}`)
	}))
	defer catalog.Close()
	isolateEnv(t, catalog.URL+"/upload/")

	out, err := run(t, "submit", writeCSV(t, goodRow, goodRow))
	require.NoError(t, err)
	assert.Equal(t, 2, received)
	assert.Contains(t, out, "Carga finalizada. Registros creados: 2.")
}

func TestSubmit_PartialFailure(t *testing.T) {
	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":false,"created":1,"failed":1,"errors":[{"row":3,"error":"Editorial no existe"}]}`)
	}))
	defer catalog.Close()
	isolateEnv(t, catalog.URL+"/upload/")

	out, err := run(t, "submit", writeCSV(t, goodRow, goodRow))
	assert.ErrorIs(t, err, errImportFailed)
	assert.Contains(t, out, "Fila 3: Editorial no existe")
}

func TestSubmit_InvalidFileIsNotSent(t *testing.T) {
	var requests int
	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer catalog.Close()
	isolateEnv(t, catalog.URL+"/upload/")

	_, err := run(t, "submit", writeCSV(t, badRow))
	assert.ErrorIs(t, err, errImportFailed)
	assert.Zero(t, requests)
}
