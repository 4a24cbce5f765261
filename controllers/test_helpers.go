// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023 OTPGate

package controllers

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgtype"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"

	"github.com/otpgate/otpgate-api/db/mocks"
	"github.com/otpgate/otpgate-api/db/types/password"
	authpassword "github.com/otpgate/otpgate-api/internal/auth/password"
	"github.com/otpgate/otpgate-api/internal/auth/scratch"
	"github.com/otpgate/otpgate-api/internal/auth/verifier"
	"github.com/otpgate/otpgate-api/internal/config"
	"github.com/otpgate/otpgate-api/internal/helper"
	"github.com/otpgate/otpgate-api/models"
)

// TestFixtures contains all test data fixtures
type TestFixtures struct {
	Users  []models.User
	Tokens []TokenPair
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	UserID       int32
	Username     string
}

// TestServer wraps Echo for consistent test setup
type TestServer struct {
	Echo      *echo.Echo
	Recorder  *httptest.ResponseRecorder
	MockDB    *mocks.Querier
	MockRedis *redis.Client
	JWTConfig echojwt.Config
}

// NewTestServer creates a configured test server
func NewTestServer(t *testing.T) *TestServer {
	config.DefaultConfig()

	e := echo.New()
	mockDB := mocks.NewQuerier(t)
	recorder := httptest.NewRecorder()

	// Setup mock Redis client
	mockRedis := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use test database
	})

	jwtConfig := echojwt.Config{
		SigningMethod: config.ServiceJWTSigningMethod.GetString(),
		SigningKey:    helper.GetJWTPublicKey(),
		NewClaimsFunc: func(_ echo.Context) jwt.Claims {
			return new(helper.JwtClaims)
		},
		ErrorHandler: func(_ echo.Context, _ error) error {
			// Return 401 Unauthorized for any JWT-related errors
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		},
	}

	return &TestServer{
		Echo:      e,
		Recorder:  recorder,
		MockDB:    mockDB,
		MockRedis: mockRedis,
		JWTConfig: jwtConfig,
	}
}

// CreateTestFixtures generates consistent test data
func CreateTestFixtures() *TestFixtures {
	now := time.Now()

	// Users covering both second-factor setups
	users := []models.User{
		{
			ID:          1,
			Username:    "testuser1",
			Password:    password.Password(mustHashPassword("testpassword1")),
			Email:       pgtype.Text{String: "testuser1@example.com", Valid: true},
			TotpEnabled: true,
			MfaState:    mustMarshalState(verifier.NewState(nil)),
		},
		{
			ID:          2,
			Username:    "testuser2",
			Password:    password.Password(mustHashPassword("testpassword2")),
			Email:       pgtype.Text{String: "testuser2@example.com", Valid: true},
			TotpEnabled: false,
		},
		{
			ID:          3,
			Username:    "admin",
			Password:    password.Password(mustHashPassword("adminpassword")),
			Email:       pgtype.Text{String: "admin@example.com", Valid: true},
			TotpEnabled: true,
			MfaState:    mustMarshalState(verifier.NewState(MustGenerateScratch(scratch.DefaultPoolSize))),
		},
	}

	// Generate tokens for test users
	var tokens []TokenPair
	for _, user := range users {
		claims := &helper.JwtClaims{
			UserID:        user.ID,
			Username:      user.Username,
			Authenticated: true,
		}
		tokenPair, _ := helper.GenerateToken(claims, now)
		tokens = append(tokens, TokenPair{
			AccessToken:  tokenPair.AccessToken,
			RefreshToken: tokenPair.RefreshToken,
			UserID:       user.ID,
			Username:     user.Username,
		})
	}

	return &TestFixtures{
		Users:  users,
		Tokens: tokens,
	}
}

// mustHashPassword hashes a password for testing
func mustHashPassword(plaintext string) string {
	hashed, err := authpassword.GenerateHash(authpassword.DefaultHasher, plaintext)
	if err != nil {
		panic(fmt.Sprintf("Failed to hash password: %v", err))
	}
	return hashed
}

// mustMarshalState encodes a verifier state for fixture rows
func mustMarshalState(s verifier.State) []byte {
	data, err := s.Marshal()
	if err != nil {
		panic(fmt.Sprintf("Failed to marshal state: %v", err))
	}
	return data
}

// MustGenerateScratch returns a fresh scratch pool or panics
func MustGenerateScratch(n int) []scratch.Code {
	codes, err := scratch.Generate(n)
	if err != nil {
		panic(fmt.Sprintf("Failed to generate scratch codes: %v", err))
	}
	return codes
}

// MockUserQueries sets up common user-related database mocks
func (ts *TestServer) MockUserQueries(fixtures *TestFixtures) {
	for _, user := range fixtures.Users {
		ts.MockDB.On("GetUserByID", mock.Anything, user.ID).
			Return(user, nil).Maybe()

		ts.MockDB.On("GetUserByUsername", mock.Anything, user.Username).
			Return(user, nil).Maybe()
	}
}

// CreateRequest creates an HTTP request with optional authentication
func (ts *TestServer) CreateRequest(method, url string, body interface{}, userID ...int32) *http.Request {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, url, reqBody)
	req.Header.Set("Content-Type", "application/json")

	// Add authentication if userID provided
	if len(userID) > 0 {
		fixtures := CreateTestFixtures()
		for _, token := range fixtures.Tokens {
			if token.UserID == userID[0] {
				req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))
				break
			}
		}
	}

	return req
}

// ExecuteRequest executes an HTTP request and returns the response recorder
func (ts *TestServer) ExecuteRequest(req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	ts.Echo.ServeHTTP(recorder, req)
	return recorder
}

// AssertJSONResponse asserts the JSON response matches expected data
func AssertJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, expectedStatus int, expectedData interface{}) {
	if recorder.Code != expectedStatus {
		t.Errorf("Expected status %d, got %d. Response body: %s", expectedStatus, recorder.Code, recorder.Body.String())
		return
	}

	if expectedData != nil {
		var actualData interface{}
		err := json.Unmarshal(recorder.Body.Bytes(), &actualData)
		if err != nil {
			t.Errorf("Failed to unmarshal response: %v", err)
			return
		}
	}
}

// GenerateRandomString generates a random string of specified length
func GenerateRandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		b[i] = charset[n.Int64()]
	}
	return string(b)
}

// CreateMaliciousPayloads returns common malicious input payloads for security testing
func CreateMaliciousPayloads() []string {
	return []string{
		// SQL Injection attempts
		"'; DROP TABLE users; --",
		"' OR '1'='1",
		"1' UNION SELECT * FROM users--",
		"admin'--",
		"admin' /*",
		"' OR 1=1#",

		// XSS attempts
		"<script>alert('xss')</script>",
		"javascript:alert('xss')",
		"<img src=x onerror=alert('xss')>",
		"<svg onload=alert('xss')>",

		// Path traversal
		"../../../etc/passwd",
		"..\\..\\..\\windows\\system32\\config\\sam",
		"....//....//....//etc/passwd",

		// Command injection
		"; ls -la",
		"| cat /etc/passwd",
		"&& rm -rf /",
		"`whoami`",

		// Buffer overflow attempts
		strings.Repeat("A", 10000),
		strings.Repeat("X", 65536),
	}
}

// SecurityTestCase represents a security test scenario
type SecurityTestCase struct {
	Name           string
	Method         string
	URL            string
	Payload        interface{}
	Headers        map[string]string
	ExpectedStatus int
	ShouldReject   bool
	Description    string
}

// CreateSecurityTestCases generates security test cases against the auth surface
func CreateSecurityTestCases() []SecurityTestCase {
	maliciousPayloads := CreateMaliciousPayloads()
	var testCases []SecurityTestCase

	for i, payload := range maliciousPayloads {
		testCases = append(testCases, SecurityTestCase{
			Name:           fmt.Sprintf("MaliciousLogin_%d", i),
			Method:         "POST",
			URL:            "/api/v1/login",
			Payload:        map[string]string{"username": payload, "password": "test"},
			ExpectedStatus: 400,
			ShouldReject:   true,
			Description:    fmt.Sprintf("Should reject malicious input: %s", payload[:minInt(50, len(payload))]),
		})

		testCases = append(testCases, SecurityTestCase{
			Name:           fmt.Sprintf("MaliciousOTP_%d", i),
			Method:         "POST",
			URL:            "/api/v1/authn/factor_verify",
			Payload:        map[string]string{"state_token": "abc", "otp": payload},
			ExpectedStatus: 400,
			ShouldReject:   true,
			Description:    fmt.Sprintf("Should reject malicious OTP: %s", payload[:minInt(50, len(payload))]),
		})
	}

	return testCases
}

// PerformanceTestConfig configures performance testing parameters
type PerformanceTestConfig struct {
	Concurrency int
	Duration    time.Duration
	Requests    int
}

// LoadTestResult contains the results of a load test
type LoadTestResult struct {
	TotalRequests  int
	SuccessfulReqs int
	FailedRequests int
	AverageLatency time.Duration
	MinLatency     time.Duration
	MaxLatency     time.Duration
	RequestsPerSec float64
	ErrorRate      float64
}

// PerformLoadTest executes a load test with the given configuration
func PerformLoadTest(config PerformanceTestConfig, setup func() (*TestServer, *http.Request)) *LoadTestResult {
	ts, baseReq := setup()

	var (
		totalRequests  int
		successfulReqs int
		failedRequests int
		totalLatency   time.Duration
		minLatency     = time.Hour
		maxLatency     time.Duration
		mu             sync.Mutex
	)

	startTime := time.Now()

	semaphore := make(chan struct{}, config.Concurrency)
	var wg sync.WaitGroup

	for i := 0; i < config.Requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			// Clone request for each goroutine
			req := httptest.NewRequest(baseReq.Method, baseReq.URL.String(), bytes.NewReader([]byte{}))
			for k, v := range baseReq.Header {
				req.Header[k] = v
			}

			reqStart := time.Now()
			recorder := ts.ExecuteRequest(req)
			latency := time.Since(reqStart)

			mu.Lock()
			totalRequests++
			totalLatency += latency

			if latency < minLatency {
				minLatency = latency
			}
			if latency > maxLatency {
				maxLatency = latency
			}

			if recorder.Code < 400 {
				successfulReqs++
			} else {
				failedRequests++
			}
			mu.Unlock()
		}()
	}

	wg.Wait()
	totalDuration := time.Since(startTime)

	return &LoadTestResult{
		TotalRequests:  totalRequests,
		SuccessfulReqs: successfulReqs,
		FailedRequests: failedRequests,
		AverageLatency: totalLatency / time.Duration(totalRequests),
		MinLatency:     minLatency,
		MaxLatency:     maxLatency,
		RequestsPerSec: float64(totalRequests) / totalDuration.Seconds(),
		ErrorRate:      float64(failedRequests) / float64(totalRequests) * 100,
	}
}

// minInt returns the minimum of two integers
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
