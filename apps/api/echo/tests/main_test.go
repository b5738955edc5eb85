package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/Shubham414kumar/vidyasphere/apps/api/echo"
	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/attendance"
	"github.com/Shubham414kumar/vidyasphere/core/batch"
	"github.com/Shubham414kumar/vidyasphere/core/dashboard"
	"github.com/Shubham414kumar/vidyasphere/core/document"
	"github.com/Shubham414kumar/vidyasphere/core/donation"
	"github.com/Shubham414kumar/vidyasphere/core/profile"
	"github.com/Shubham414kumar/vidyasphere/core/user"
	"github.com/Shubham414kumar/vidyasphere/services/email"
	"github.com/Shubham414kumar/vidyasphere/services/oauth"
	"github.com/Shubham414kumar/vidyasphere/services/report"
	"github.com/Shubham414kumar/vidyasphere/storage/database/inmem"
	"github.com/Shubham414kumar/vidyasphere/storage/objects"
	"github.com/Shubham414kumar/vidyasphere/storage/sessions"
	"github.com/Shubham414kumar/vidyasphere/tests"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

// testApp is a server over in-memory repositories and stores.
type testApp struct {
	Server
	conf    *core.Config
	usrRepo user.Repository
	notes   document.Service
	batches batch.Service
	objects *objstore.MemoryStore
	revoked *sessions.MemoryStore
	mailSvc *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T, configure ...func(*core.Config)) *testApp {
	t.Helper()
	conf := core.NewTestConfig()
	for _, fn := range configure {
		fn(conf)
	}
	logger := testutil.NewLogger()
	validate, translator := testutil.NewValidator()
	core.ParseEmailTemplates(logger)

	// set up DB & repos
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, logger, user.NewServiceOptions(conf))
	profileSvc := profile.NewService(inmemdb.NewProfileRepository(db))
	noteSvc := document.NewService(document.KindNote, inmemdb.NewDocumentRepository(db, document.KindNote))
	pyqSvc := document.NewService(document.KindPYQ, inmemdb.NewDocumentRepository(db, document.KindPYQ))
	batchSvc := batch.NewService(inmemdb.NewBatchRepository(db))
	attendanceSvc := attendance.NewService(inmemdb.NewAttendanceRepository(db), reportsvc.NewXLSXReporter())
	donationSvc := donation.NewService(inmemdb.NewDonationRepository(db), nil, mailSvc, logger, donation.Options{
		AppName:         conf.AppName,
		FrontendBaseURL: conf.FrontendBaseURL,
	})
	objects := objstore.NewMemoryStore()
	revocations := sessions.NewMemoryStore()

	// set up server
	srv := NewServer(&Options{
		Conf:          conf,
		Logger:        logger,
		Validate:      validate,
		Translator:    translator,
		UserSvc:       usrSvc,
		ProfileSvc:    profileSvc,
		NoteSvc:       noteSvc,
		PYQSvc:        pyqSvc,
		BatchSvc:      batchSvc,
		AttendanceSvc: attendanceSvc,
		DonationSvc:   donationSvc,
		DashboardSvc:  dashboard.NewService(profileSvc, noteSvc, pyqSvc, batchSvc, donationSvc),
		Objects:       objects,
		Revocations:   revocations,
		Google:        oauthsvc.NewGoogle(conf.OAuth),
		Microsoft:     oauthsvc.NewMicrosoft(conf.OAuth),
	})

	return &testApp{
		Server:  srv,
		conf:    conf,
		usrRepo: usrRepo,
		notes:   noteSvc,
		batches: batchSvc,
		objects: objects,
		revoked: revocations,
		mailSvc: mailSvc,
	}
}

func (app *testApp) createUser(t *testing.T, name, email string, roles ...string) user.User {
	return testutil.CreateUser(t, app.usrRepo, name, email, "Lib3rty&Books", roles, true)
}

func (app *testApp) token(t *testing.T, usr user.User) string {
	token, err := GenerateToken(GetUserClaims(usr, app.conf), app.conf.SecretKey)
	if err != nil {
		t.Fatalf("token(): %v", err)
	}
	return token
}

func (app *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) *http.Request {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func newRequest(method, path string, data ...[]byte) *http.Request {
	return newAuthRequest(method, path, "", data...)
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func unmarshallObj(t *testing.T, data []byte, obj interface{}) {
	if err := json.Unmarshal(data, obj); err != nil {
		t.Fatalf("unmarshallObj(%s): %v", data, err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, "code; body %s", rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(newAuthRequest(tt.method, tt.path, tt.token, tt.body))
			checkCodeAndData(t, tt, rec)
		})
	}
}
