package grader_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"coder_quest_backend/internal/config"
	"coder_quest_backend/internal/grader"
	"coder_quest_backend/internal/model"
	"coder_quest_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func challenge() model.Challenge {
	return model.Challenge{
		LanguageID: 50,
		TestCases: []model.TestCase{
			{Input: "1 2", ExpectedOutput: "3"},
			{Input: "2 2", ExpectedOutput: "4"},
			{Input: "9 9", ExpectedOutput: "18", Hidden: true},
		},
	}
}

func TestJudge0Grader_CountsAcceptedCases(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/submissions", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("wait"))
		assert.Equal(t, "secret", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, "judge0.example", r.Header.Get("X-RapidAPI-Host"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(71), body["language_id"])

		status := 3
		if body["stdin"] == "9 9" {
			status = 4
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"stdout":"x","status":{"id":` + strconv.Itoa(status) + `,"description":"d"}}`))
	}))
	defer srv.Close()

	g := grader.NewJudge0Grader(config.Judge0Config{URL: srv.URL + "/", APIKey: "secret", Host: "judge0.example", DefaultLanguageID: 50})

	res, err := g.Grade(context.Background(), "print(sum)", 71, challenge())

	require.NoError(t, err)
	assert.Equal(t, 2, res.PassedTests)
	assert.Equal(t, 3, res.TotalTests)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestJudge0Grader_CompileErrorFailsCase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"compile_output":"error","status":{"id":6,"description":"Compilation Error"}}`))
	}))
	defer srv.Close()

	g := grader.NewJudge0Grader(config.Judge0Config{URL: srv.URL, DefaultLanguageID: 50})

	res, err := g.Grade(context.Background(), "broken", 0, challenge())

	require.NoError(t, err)
	assert.Equal(t, 0, res.PassedTests)
	assert.Equal(t, 3, res.TotalTests)
}

func TestJudge0Grader_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := grader.NewJudge0Grader(config.Judge0Config{URL: srv.URL})

	_, err := g.Grade(context.Background(), "code", 50, challenge())

	assert.ErrorIs(t, err, util.ErrGraderFailed)
	assert.Contains(t, err.Error(), "429")
}

func TestJudge0Grader_NotConfigured(t *testing.T) {
	g := grader.NewJudge0Grader(config.Judge0Config{})

	_, err := g.Grade(context.Background(), "code", 50, challenge())

	assert.ErrorIs(t, err, util.ErrGraderUnavailable)
}
