package service

import (
	"net/http"
	"strings"
	"time"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
)

type JSON = map[string]interface{}

func operations(resp *apitest.Response) []string {
	result := []string{}
	entries, _ := resp.BodyJson().([]interface{})
	for _, entry := range entries {
		result = append(result, entry.(JSON)["operation"].(string))
	}
	return result
}

func lines(resp *apitest.Response) []string {
	body := strings.TrimSpace(resp.BodyString())
	if body == "" {
		return []string{}
	}
	return strings.Split(body, "\n")
}

func Acceptance(a *biff.A, apiRequest func(method, path string) *apitest.Request) {

	a.Alternative("Batch not found", func(a *biff.A) {
		resp := apiRequest("GET", "/batches/nobody").Do()

		biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
	})

	a.Alternative("Create batch without name", func(a *biff.A) {
		resp := apiRequest("POST", "/batches").
			WithBodyJson(JSON{
				"records": []JSON{{"name": "Pablo"}},
			}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
	})

	a.Alternative("Create batch", func(a *biff.A) {
		resp := apiRequest("POST", "/batches").
			WithBodyJson(JSON{
				"name": "people",
				"records": []JSON{
					{"name": "Pablo", "age": 30},
					{"name": "Sara", "age": 25},
				},
			}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusCreated)
		expectedBody := JSON{
			"name":       "people",
			"total":      2,
			"operations": 0,
		}
		biff.AssertEqualJson(resp.BodyJson(), expectedBody)

		a.Alternative("Create twice", func(a *biff.A) {
			resp := apiRequest("POST", "/batches").
				WithBodyJson(JSON{
					"name": "people",
				}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusConflict)
		})

		a.Alternative("Retrieve batch", func(a *biff.A) {
			resp := apiRequest("GET", "/batches/people").Do()

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), expectedBody)
		})

		a.Alternative("List batches", func(a *biff.A) {
			resp := apiRequest("GET", "/batches").Do()

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), []JSON{expectedBody})
		})

		a.Alternative("Dataset", func(a *biff.A) {
			resp := apiRequest("POST", "/batches/people:dataset").Do()

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqual(lines(resp), []string{
				`{"age":30,"name":"Pablo"}`,
				`{"age":25,"name":"Sara"}`,
			})
		})

		a.Alternative("Update without key", func(a *biff.A) {
			resp := apiRequest("POST", "/batches/people:update").
				WithBodyJson(JSON{"value": 1}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
		})

		a.Alternative("Update every member", func(a *biff.A) {
			resp := apiRequest("POST", "/batches/people:update").
				WithBodyJson(JSON{
					"key":   "city",
					"value": "Madrid",
				}).Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)

			resp = apiRequest("POST", "/batches/people:dataset").Do()
			biff.AssertEqual(lines(resp), []string{
				`{"age":30,"city":"Madrid","name":"Pablo"}`,
				`{"age":25,"city":"Madrid","name":"Sara"}`,
			})

			a.Alternative("Commit one, rollback the other", func(a *biff.A) {
				resp := apiRequest("POST", "/batches/people:commit").
					WithBodyJson(JSON{"id": 1}).Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)

				resp = apiRequest("POST", "/batches/people:rollback").
					WithBodyJson(JSON{"id": 2}).Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)

				resp = apiRequest("POST", "/batches/people:dataset").Do()
				biff.AssertEqual(lines(resp), []string{
					`{"age":30,"city":"Madrid","name":"Pablo"}`,
					`{"age":25,"name":"Sara"}`,
				})

				resp = apiRequest("POST", "/batches/people:logs").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqual(operations(resp), []string{"set", "set", "commit", "rollback"})

				resp = apiRequest("GET", "/batches/people").Do()
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"name":       "people",
					"total":      2,
					"operations": 4,
				})
			})

			a.Alternative("Commit every member without body", func(a *biff.A) {
				resp := apiRequest("POST", "/batches/people:commit").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)

				resp = apiRequest("GET", "/batches/people/members/2").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"id":         2,
					"record":     JSON{"age": 25, "city": "Madrid", "name": "Sara"},
					"visible":    JSON{"age": 25, "city": "Madrid", "name": "Sara"},
					"delta":      JSON{},
					"tombstones": []string{},
					"armed":      false,
					"revoked":    false,
				})
			})
		})

		a.Alternative("Delete key of one member", func(a *biff.A) {
			resp := apiRequest("POST", "/batches/people:delete").
				WithBodyJson(JSON{
					"key": "age",
					"id":  2,
				}).Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)

			resp = apiRequest("GET", "/batches/people/members/2").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), JSON{
				"id":         2,
				"record":     JSON{"age": 25, "name": "Sara"},
				"visible":    JSON{"name": "Sara"},
				"delta":      JSON{},
				"tombstones": []string{"age"},
				"armed":      false,
				"revoked":    false,
			})
		})

		a.Alternative("Find by field", func(a *biff.A) {
			resp := apiRequest("POST", "/batches/people:find").
				WithBodyJson(JSON{
					"field": "name",
					"value": "Sara",
				}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqual(lines(resp), []string{`{"age":25,"name":"Sara"}`})
		})

		a.Alternative("Find by filter", func(a *biff.A) {
			resp := apiRequest("POST", "/batches/people:find").
				WithBodyJson(JSON{
					"filter": JSON{"name": "Pablo"},
				}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqual(lines(resp), []string{`{"age":30,"name":"Pablo"}`})
		})

		a.Alternative("Find with field and filter", func(a *biff.A) {
			resp := apiRequest("POST", "/batches/people:find").
				WithBodyJson(JSON{
					"field":  "name",
					"value":  "Pablo",
					"filter": JSON{"name": "Pablo"},
				}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
		})

		a.Alternative("Member not found", func(a *biff.A) {
			resp := apiRequest("GET", "/batches/people/members/9").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusNotFound)

			resp = apiRequest("GET", "/batches/people/members/first").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
		})

		a.Alternative("Timeout with commit", func(a *biff.A) {
			resp := apiRequest("POST", "/batches/people:timeout").
				WithBodyJson(JSON{
					"milliseconds": 50,
					"commit":       true,
					"id":           1,
				}).Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)

			resp = apiRequest("POST", "/batches/people:update").
				WithBodyJson(JSON{
					"key":   "age",
					"value": 31,
					"id":    1,
				}).Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)

			resp = apiRequest("GET", "/batches/people/members/1").Do()
			biff.AssertEqual(resp.BodyJson().(JSON)["armed"], true)

			time.Sleep(200 * time.Millisecond)

			resp = apiRequest("GET", "/batches/people/members/1").Do()
			biff.AssertEqualJson(resp.BodyJson().(JSON)["record"], JSON{"age": 31, "name": "Pablo"})

			resp = apiRequest("POST", "/batches/people:logs").Do()
			biff.AssertEqual(operations(resp), []string{"commit", "set", "timeout"})

			apiRequest("POST", "/batches/people:stop").Do()
		})

		a.Alternative("Negative timeout", func(a *biff.A) {
			resp := apiRequest("POST", "/batches/people:timeout").
				WithBodyJson(JSON{"milliseconds": -1}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
		})

		a.Alternative("Remove timer", func(a *biff.A) {
			apiRequest("POST", "/batches/people:timeout").
				WithBodyJson(JSON{"milliseconds": 10000}).Do()

			resp := apiRequest("POST", "/batches/people:removeTimer").
				WithBodyJson(JSON{"id": 2}).Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)

			resp = apiRequest("GET", "/batches/people/members/1").Do()
			biff.AssertEqual(resp.BodyJson().(JSON)["armed"], true)
			resp = apiRequest("GET", "/batches/people/members/2").Do()
			biff.AssertEqual(resp.BodyJson().(JSON)["armed"], false)

			apiRequest("POST", "/batches/people:stop").Do()
		})

		a.Alternative("Stop one member", func(a *biff.A) {
			resp := apiRequest("POST", "/batches/people:stop").
				WithBodyJson(JSON{"id": 1}).Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)

			resp = apiRequest("GET", "/batches/people/members/1").Do()
			biff.AssertEqual(resp.BodyJson().(JSON)["revoked"], true)
			biff.AssertNil(resp.BodyJson().(JSON)["visible"])

			resp = apiRequest("POST", "/batches/people:update").
				WithBodyJson(JSON{
					"key":   "age",
					"value": 1,
					"id":    1,
				}).Do()
			biff.AssertEqual(resp.StatusCode, http.StatusConflict)

			resp = apiRequest("POST", "/batches/people:dataset").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusConflict)

			resp = apiRequest("POST", "/batches/people:logs").Do()
			biff.AssertEqual(operations(resp), []string{"revoke"})
		})

		a.Alternative("Clone batch", func(a *biff.A) {
			apiRequest("POST", "/batches/people:update").
				WithBodyJson(JSON{
					"key":   "age",
					"value": 99,
				}).Do()

			resp := apiRequest("POST", "/batches/people:clone").
				WithBodyJson(JSON{"name": "people-copy"}).Do()
			biff.AssertEqual(resp.StatusCode, http.StatusCreated)
			biff.AssertEqualJson(resp.BodyJson(), JSON{
				"name":       "people-copy",
				"total":      2,
				"operations": 0,
			})

			resp = apiRequest("POST", "/batches/people-copy:dataset").Do()
			biff.AssertEqual(lines(resp), []string{
				`{"age":99,"name":"Pablo"}`,
				`{"age":99,"name":"Sara"}`,
			})

			resp = apiRequest("POST", "/batches/people:clone").
				WithBodyJson(JSON{"name": "people-copy"}).Do()
			biff.AssertEqual(resp.StatusCode, http.StatusConflict)
		})

		a.Alternative("Clone batch with generated name", func(a *biff.A) {
			resp := apiRequest("POST", "/batches/people:clone").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusCreated)

			name := resp.BodyJson().(JSON)["name"].(string)
			biff.AssertTrue(strings.HasPrefix(name, "people-"))

			resp = apiRequest("GET", "/batches/"+name).Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
		})

		a.Alternative("Drop batch", func(a *biff.A) {
			resp := apiRequest("POST", "/batches/people:dropBatch").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)

			a.Alternative("Get dropped batch", func(a *biff.A) {
				resp := apiRequest("GET", "/batches/people").Do()

				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			})

			a.Alternative("Drop twice", func(a *biff.A) {
				resp := apiRequest("POST", "/batches/people:dropBatch").Do()

				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			})
		})
	})
}
