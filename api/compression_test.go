package api

import (
	"compress/gzip"
	"io"
	"net/http"
	"testing"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"

	"github.com/fulldump/stagedb/database"
	"github.com/fulldump/stagedb/service"
	"github.com/fulldump/stagedb/staging"
)

func TestCompression(t *testing.T) {

	db := database.NewDatabase(&database.Config{})
	biff.AssertNil(db.Load())
	s := service.NewService(db)
	_, err := s.CreateBatch("people", []staging.Record{{"name": "Pablo"}})
	biff.AssertNil(err)

	b := Build(s, "test")
	b.WithInterceptors(Compression)
	api := apitest.NewWithHandler(b)

	resp := api.Request("POST", "/v1/batches/people:dataset").
		WithHeader("Accept-Encoding", "gzip").
		Do()

	biff.AssertEqual(resp.StatusCode, http.StatusOK)
	biff.AssertEqual(resp.Header.Get("Content-Encoding"), "gzip")

	gz, err := gzip.NewReader(resp.Body)
	biff.AssertNil(err)
	body, err := io.ReadAll(gz)
	biff.AssertNil(err)
	biff.AssertEqual(string(body), `{"name":"Pablo"}`+"\n")
}
