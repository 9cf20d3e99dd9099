package dataset

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"safety-analytics-go/internal/logger"
	"safety-analytics-go/internal/types"
)

const injuryCSV = "\ufeffCase Number,Site,Severity\n" +
	"C-1,DFW7,High\n" +
	"\n" +
	",,\n" +
	"C-2,SEA1\n"

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(injuryCSV))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, types.Row{"Case Number": "C-1", "Site": "DFW7", "Severity": "High"}, rows[0])
	assert.Equal(t, "", rows[1]["Severity"])

	_, err = ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Incident ID", "Likelihood"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"NM-9", "Likely"}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	rows, err := Read("near.xlsx", &buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Likely", rows[0]["Likelihood"])

	_, err = ReadXLSX(strings.NewReader("not a zip"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "injuries.csv")
	require.NoError(t, os.WriteFile(p, []byte(injuryCSV), 0o600))
	rows, err := Load(p)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = Read("report.pdf", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnsupportedExt)

	_, err = Load(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestFetcher(t *testing.T) {
	t.Run("retries server errors", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte(injuryCSV))
		}))
		defer srv.Close()

		var logs bytes.Buffer
		f := NewFetcher(10*time.Second, 0)
		f.Log = logger.NewWith("production", "info", &logs)
		rows, err := f.Fetch(context.Background(), srv.URL+"/exports/injuries.csv")
		require.NoError(t, err)
		assert.Len(t, rows, 2)
		assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
		assert.Contains(t, logs.String(), `"component":"dataset.fetch"`)
		assert.Contains(t, logs.String(), "server error, retrying")
	})

	t.Run("client errors are permanent", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			http.NotFound(w, r)
		}))
		defer srv.Close()

		_, err := NewFetcher(10*time.Second, 0).Fetch(context.Background(), srv.URL+"/x.csv")
		require.Error(t, err)
		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	})

	t.Run("size cap", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(injuryCSV))
		}))
		defer srv.Close()

		_, err := NewFetcher(10*time.Second, 8).Fetch(context.Background(), srv.URL+"/x.csv")
		assert.ErrorContains(t, err, "exceeds")
	})

	t.Run("rejects non-http urls", func(t *testing.T) {
		_, err := NewFetcher(time.Second, 0).Fetch(context.Background(), "file:///etc/passwd")
		assert.Error(t, err)
	})
}
