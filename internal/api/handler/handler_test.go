package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/nagarajgmcs24/fwdproject/internal/api/handler"
	"github.com/nagarajgmcs24/fwdproject/internal/complaint"
	"github.com/nagarajgmcs24/fwdproject/internal/config"
	"github.com/nagarajgmcs24/fwdproject/internal/feed"
	"github.com/nagarajgmcs24/fwdproject/internal/localization"
	"github.com/nagarajgmcs24/fwdproject/internal/models"
	"github.com/nagarajgmcs24/fwdproject/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type testServer struct {
	router    *gin.Engine
	storage   *MockStorage
	store     *MockStore
	hub       *feed.Hub
	localizer *localization.Localizer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	localizer, err := localization.NewLocalizer()
	require.NoError(t, err)

	ts := &testServer{
		storage:   new(MockStorage),
		store:     new(MockStore),
		hub:       feed.NewHub(nil, nil, nil),
		localizer: localizer,
	}
	svc := complaint.NewService(ts.storage, ts.store, nil, nil, nil)

	h := handler.NewHandler(svc, ts.storage, ts.hub, localizer, nil)
	h.JWTSecret = testSecret
	h.MaxUploadBytes = 1024

	ts.router = gin.New()
	h.RegisterRoutes(ts.router)
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func operatorToken(t *testing.T) string {
	t.Helper()
	token, err := handler.GenerateOperatorToken(testSecret, "ward-office", time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestListWards_LocalizedDisplayName(t *testing.T) {
	ts := newTestServer(t)
	ts.storage.On("ListWards", mock.Anything).Return([]models.Ward{
		{ID: "w1", WardNumber: "1", WardNameEn: "Jayanagar", WardNameKn: "ಜಯನಗರ"},
	}, nil)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/wards?lang=kn", nil))
	require.Equal(t, http.StatusOK, w.Code)

	wards := decode(t, w)["wards"].([]interface{})
	require.Len(t, wards, 1)
	ward := wards[0].(map[string]interface{})
	assert.Equal(t, "ಜಯನಗರ", ward["display_name"])
	assert.Equal(t, "Jayanagar", ward["ward_name_en"])
}

func TestGetOptions(t *testing.T) {
	ts := newTestServer(t)
	ts.storage.On("ListWards", mock.Anything).Return([]models.Ward{{ID: "w1", WardNameEn: "Jayanagar"}}, nil)
	ts.storage.On("ListCategories", mock.Anything).Return([]models.ProblemCategory{{ID: "p1", NameEn: "Pothole", NameHi: "गड्ढा"}}, nil)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/options?lang=hi", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "hi", body["language"])
	assert.Len(t, body["wards"], 1)
	category := body["categories"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "गड्ढा", category["display_name"])
}

func TestGetOptions_StoreErrorIsGeneric(t *testing.T) {
	ts := newTestServer(t)
	ts.storage.On("ListWards", mock.Anything).Return(nil, errors.New("db down"))
	ts.storage.On("ListCategories", mock.Anything).Return([]models.ProblemCategory{}, nil)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/options", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, ts.localizer.GetString("en", localization.KeyErrorMessage), decode(t, w)["error"])
}

func TestListComplaints(t *testing.T) {
	ts := newTestServer(t)
	ts.storage.On("ListComplaints", mock.Anything, storage.ComplaintFilter{WardID: "w1", Limit: config.ComplaintListLimit}).
		Return([]models.Complaint{{
			ID:       "c1",
			WardID:   "w1",
			Ward:     &models.Ward{WardNameEn: "Jayanagar", WardNameHi: "जयनगर"},
			Category: &models.ProblemCategory{NameEn: "Pothole"},
		}}, nil)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/complaints?ward_id=w1&lang=hi", nil))
	require.Equal(t, http.StatusOK, w.Code)

	item := decode(t, w)["complaints"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "c1", item["id"])
	assert.Equal(t, "जयनगर", item["ward_display_name"])
	assert.Equal(t, "Pothole", item["category_display_name"])
}

func TestListComplaints_InvalidLimit(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/complaints?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	ts.storage.AssertNotCalled(t, "ListComplaints", mock.Anything, mock.Anything)
}

const complaintID = "3f2b8c1e-5d4a-4e6b-9c7d-2a1b0e9f8d76"

func TestGetComplaint_NotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.storage.On("GetComplaintByID", mock.Anything, complaintID).Return(nil, storage.ErrNotFound)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/complaints/"+complaintID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComplaintRoutes_MalformedIDIsNotFound(t *testing.T) {
	ts := newTestServer(t)

	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/v1/complaints/abc", nil),
		httptest.NewRequest(http.MethodPatch, "/api/v1/complaints/abc/status", bytes.NewBufferString(`{"status":"resolved"}`)),
		httptest.NewRequest(http.MethodPost, "/api/v1/complaints/abc/updates", bytes.NewBufferString(`{"update_text":"Crew dispatched"}`)),
	}
	for _, req := range requests {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", operatorToken(t))

		w := ts.do(req)
		assert.Equal(t, http.StatusNotFound, w.Code, req.Method+" "+req.URL.Path)
		assert.Equal(t, ts.localizer.GetString("en", localization.KeyNotFound), decode(t, w)["error"])
	}

	ts.storage.AssertNotCalled(t, "GetComplaintByID", mock.Anything, mock.Anything)
	ts.storage.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	ts.storage.AssertNotCalled(t, "AddComplaintUpdate", mock.Anything, mock.Anything)
}

type form struct {
	fields map[string]string
	photo  []byte
}

func (f form) request(t *testing.T, wardID string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range f.fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if f.photo != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="photo"; filename="pothole.jpg"`)
		header.Set("Content-Type", "image/jpeg")
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(f.photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wards/"+wardID+"/complaints", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func validForm(description string) form {
	return form{
		fields: map[string]string{
			"category_id":         "p1",
			"citizen_name":        "Asha",
			"citizen_phone":       "9876543210",
			"location_details":    "Near the bus stand",
			"problem_description": description,
		},
		photo: []byte{0xff, 0xd8, 0xff, 0xe0},
	}
}

func TestSubmitComplaint_Created(t *testing.T) {
	ts := newTestServer(t)
	ts.store.On("Put", mock.Anything, config.AttachmentBucket, mock.AnythingOfType("string"), "image/jpeg", mock.Anything).Return(nil)
	ts.store.On("PublicURL", config.AttachmentBucket, mock.AnythingOfType("string")).Return("https://cdn.example.com/p.jpg")
	ts.storage.On("CreateComplaint", mock.Anything, mock.MatchedBy(func(c *models.Complaint) bool {
		return c.WardID == "w1" && c.ImageURL == "https://cdn.example.com/p.jpg"
	})).Return(nil)
	ts.storage.On("UpdateVerification", mock.Anything, "c-1", mock.Anything).Return(nil)
	ts.storage.On("PublishEvent", mock.Anything, mock.Anything).Return(nil)

	w := ts.do(validForm("Large pothole near the bus stand causing accidents").request(t, "w1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, ts.localizer.GetString("en", localization.KeySuccessMessage), body["message"])
	assert.Equal(t, true, body["classified"])
	assert.EqualValues(t, config.SuccessNotifyDelay.Milliseconds(), body["notify_after_ms"])
	c := body["complaint"].(map[string]interface{})
	assert.Equal(t, models.VerificationLegitimate, c["verification_status"])
}

func TestSubmitComplaint_MissingPhoto(t *testing.T) {
	ts := newTestServer(t)
	f := validForm("Large pothole near the bus stand")
	f.photo = nil

	req := f.request(t, "w1")
	req.Header.Set("Accept-Language", "kn-IN")
	w := ts.do(req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, ts.localizer.GetString("kn", localization.KeyRequiredField), body["error"])
	assert.Equal(t, []interface{}{"photo"}, body["fields"])
	ts.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitComplaint_PhotoTooLarge(t *testing.T) {
	ts := newTestServer(t)
	f := validForm("Large pothole near the bus stand")
	f.photo = bytes.Repeat([]byte{0xff}, 2048)

	w := ts.do(f.request(t, "w1"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSubmitComplaint_PersistenceError(t *testing.T) {
	ts := newTestServer(t)
	ts.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ts.store.On("PublicURL", mock.Anything, mock.Anything).Return("https://cdn.example.com/p.jpg")
	ts.storage.On("CreateComplaint", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	w := ts.do(validForm("Garbage not collected for a week").request(t, "w1"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, ts.localizer.GetString("en", localization.KeyErrorMessage), decode(t, w)["error"])
	ts.storage.AssertNotCalled(t, "UpdateVerification", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetStatus_RequiresOperator(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/complaints/"+complaintID+"/status", bytes.NewBufferString(`{"status":"resolved"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusUnauthorized, ts.do(req).Code)

	req = httptest.NewRequest(http.MethodPatch, "/api/v1/complaints/"+complaintID+"/status", bytes.NewBufferString(`{"status":"resolved"}`))
	req.Header.Set("Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, ts.do(req).Code)

	ts.storage.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.storage.On("UpdateStatus", mock.Anything, complaintID, models.StatusResolved).Return(nil)
	ts.storage.On("GetComplaintByID", mock.Anything, complaintID).Return(&models.Complaint{ID: complaintID, WardID: "w1"}, nil)
	ts.storage.On("PublishEvent", mock.Anything, mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/complaints/"+complaintID+"/status", bytes.NewBufferString(`{"status":"resolved"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", operatorToken(t))

	w := ts.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.StatusResolved, decode(t, w)["status"])
}

func TestSetStatus_UnknownStatus(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/complaints/"+complaintID+"/status", bytes.NewBufferString(`{"status":"closed"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", operatorToken(t))

	assert.Equal(t, http.StatusBadRequest, ts.do(req).Code)
}

func TestAddUpdate_DefaultsAuthorToOperator(t *testing.T) {
	ts := newTestServer(t)
	ts.storage.On("GetComplaintByID", mock.Anything, complaintID).Return(&models.Complaint{ID: complaintID}, nil)
	ts.storage.On("AddComplaintUpdate", mock.Anything, mock.MatchedBy(func(u *models.ComplaintUpdate) bool {
		return u.UpdatedBy == "ward-office" && u.UpdateText == "Crew dispatched"
	})).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints/"+complaintID+"/updates", bytes.NewBufferString(`{"update_text":"Crew dispatched"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", operatorToken(t))

	w := ts.do(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ts.storage.AssertExpectations(t)
}

func TestOperatorToken(t *testing.T) {
	token, err := handler.GenerateOperatorToken(testSecret, "ward-office", time.Hour)
	require.NoError(t, err)

	operator, err := handler.ParseOperatorToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "ward-office", operator)

	_, err = handler.ParseOperatorToken([]byte("other-secret"), token)
	assert.Error(t, err)

	expired, err := handler.GenerateOperatorToken(testSecret, "ward-office", -time.Minute)
	require.NoError(t, err)
	_, err = handler.ParseOperatorToken(testSecret, expired)
	assert.Error(t, err)

	_, err = handler.GenerateOperatorToken(nil, "ward-office", time.Hour)
	assert.Error(t, err)
}

func TestServeFeed_ClosesWhenHubStopped(t *testing.T) {
	ts := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	go ts.hub.Run(ctx)
	cancel()
	select {
	case <-ts.hub.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/feed", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	var netErr net.Error
	if errors.As(err, &netErr) {
		assert.False(t, netErr.Timeout(), "server should drop the connection instead of holding it open")
	}
}
