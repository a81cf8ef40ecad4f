package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mathevolve/mathevolve-api/internal/student"
)

func TestStatusFor(t *testing.T) {
	cases := map[string]int{
		CodeValidation:         400,
		CodeAlreadyCompleted:   400,
		CodePreTestRequired:    400,
		CodeExport:             400,
		CodeInvalidCredentials: 401,
		CodeNoToken:            401,
		CodeForbidden:          403,
		CodeNotFound:           404,
		CodeUserNotFound:       404,
		CodeRateLimited:        429,
		CodeInternal:           500,
		"SOMETHING_NEW":        500,
	}
	for code, want := range cases {
		if got := StatusFor(code); got != want {
			t.Errorf("StatusFor(%s) = %d, want %d", code, got, want)
		}
	}
}

func TestWriteEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, Err(CodePreTestRequired, "do the pre-test first", nil))
	if rec.Code != 400 {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["success"] != false {
		t.Fatalf("body = %v", body)
	}
	if _, hasData := body["data"]; hasData {
		t.Fatal("error envelope must not carry data")
	}
	e := body["error"].(map[string]any)
	if e["code"] != "PRE_TEST_REQUIRED" {
		t.Fatalf("error = %v", e)
	}

	rec = httptest.NewRecorder()
	WriteOK(rec, map[string]int{"n": 1})
	if rec.Code != 200 || !strings.Contains(rec.Body.String(), `"success":true`) || strings.Contains(rec.Body.String(), `"error"`) {
		t.Fatalf("ok body = %s", rec.Body.String())
	}
}

type loginReq struct {
	Username string `json:"username" validate:"min=3,max=100"`
	Password string `json:"password" validate:"min=6,max=100"`
}

type enterReq struct {
	StudentCode string `json:"studentCode" validate:"required,student_code"`
}

func TestBind(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		dst    any
		ok     bool
		fields []string
	}{
		{"valid login", `{"username":"teacher","password":"secret1"}`, &loginReq{}, true, nil},
		{"short fields", `{"username":"ab","password":"123"}`, &loginReq{}, false, []string{"username", "password"}},
		{"bad json", `{`, &loginReq{}, false, []string{"body"}},
		{"student code", `{"studentCode":"STUDENT_012"}`, &enterReq{}, true, nil},
		{"bad student code", `{"studentCode":"STUDENT_12"}`, &enterReq{}, false, []string{"studentCode"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(c.body))
			if got := Bind(rec, req, c.dst); got != c.ok {
				t.Fatalf("Bind = %v, want %v (%s)", got, c.ok, rec.Body.String())
			}
			if c.ok {
				return
			}
			var res struct {
				Error struct {
					Code    string              `json:"code"`
					Details map[string][]string `json:"details"`
				} `json:"error"`
			}
			_ = json.Unmarshal(rec.Body.Bytes(), &res)
			if rec.Code != 400 || res.Error.Code != CodeValidation {
				t.Fatalf("got %d %s", rec.Code, res.Error.Code)
			}
			for _, f := range c.fields {
				if len(res.Error.Details[f]) == 0 {
					t.Fatalf("details missing %q: %v", f, res.Error.Details)
				}
			}
		})
	}
}

func TestStudentCodeTagMatchesValidCode(t *testing.T) {
	for _, code := range []string{"STUDENT_001", "STUDENT_999", "STUDENT_1", "student_001", "STUDENT_0001", " STUDENT_001", ""} {
		err := Validate.Var(code, "student_code")
		if got, want := err == nil, student.ValidCode(code); got != want {
			t.Errorf("%q: tag accepts=%v, ValidCode=%v", code, got, want)
		}
	}
}
