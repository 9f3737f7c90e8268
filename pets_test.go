package findmypet

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func listingJSON(id int64) map[string]interface{} {
	return map[string]interface{}{
		"id":                id,
		"title":             "Lost cat",
		"description":       "Grey tabby",
		"pet_type":          "cat",
		"status":            "missing",
		"last_seen_address": "Abai Ave 10",
		"last_seen_date":    "2026-08-30T00:00:00",
		"latitude":          43.238949,
		"longitude":         76.889709,
		"created_at":        "2026-08-30T10:00:00",
		"user_id":           7,
	}
}

func TestPetsService_List_EmptyFilterSendsNoParams(t *testing.T) {
	var gotQuery string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pets/" {
			t.Errorf("expected /pets/, got %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"pet_posts": []interface{}{listingJSON(1)},
		})
	})

	listings, err := client.Pets.List(context.Background(), ListingFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "" {
		t.Errorf("empty filter must send no query parameters, got %q", gotQuery)
	}
	if len(listings) != 1 || listings[0].ID != 1 {
		t.Errorf("unexpected listings %+v", listings)
	}
}

func TestPetsService_List_EncodesOnlySetFields(t *testing.T) {
	var gotQuery string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]interface{}{"pet_posts": []interface{}{}})
	})

	_, err := client.Pets.List(context.Background(), ListingFilter{PetType: PetTypeDog})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "pet_type=dog" {
		t.Errorf("expected pet_type=dog only, got %q", gotQuery)
	}

	_, err = client.Pets.List(context.Background(), ListingFilter{PetType: PetTypeCat, Status: StatusFound})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "pet_type=cat&status=found" {
		t.Errorf("expected both params, got %q", gotQuery)
	}
}

func TestPetsService_List_ServerErrorBecomesFetchError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "db down"})
	})

	_, err := client.Pets.List(context.Background(), ListingFilter{})
	apiErr, ok := AsError(err)
	if !ok || apiErr.Code != CodeFetchError {
		t.Fatalf("expected fetch_error, got %v", err)
	}
	if apiErr.Message != "db down" {
		t.Errorf("expected verbatim server message, got %q", apiErr.Message)
	}
}

func TestPetsService_List_TransportErrorUsesFallbackMessage(t *testing.T) {
	client := newDownClient(t)

	_, err := client.Pets.List(context.Background(), ListingFilter{})
	apiErr, ok := AsError(err)
	if !ok || apiErr.Code != CodeFetchError {
		t.Fatalf("expected fetch_error, got %v", err)
	}
	if apiErr.Message != "Failed to fetch pet posts" {
		t.Errorf("expected generic fallback, got %q", apiErr.Message)
	}
}

func TestPetsService_Get(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pets/42" {
			t.Errorf("expected /pets/42, got %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"pet_post": listingJSON(42)})
	})

	listing, err := client.Pets.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listing.ID != 42 {
		t.Errorf("expected id 42, got %d", listing.ID)
	}
}

func TestPetsService_Get_NotFound(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Pet post not found"})
	})

	_, err := client.Pets.Get(context.Background(), 999)
	apiErr, ok := AsError(err)
	if !ok || !apiErr.IsNotFound() {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestPetsService_ListMine(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pets/user" {
			t.Errorf("expected /pets/user, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing Authorization Header"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"pet_posts": []interface{}{listingJSON(5)},
		})
	})
	client.Session().Set("tok", nil)

	listings, err := client.Pets.ListMine(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
}

func TestPetsService_ListMine_AfterLogout(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing Authorization Header"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"pet_posts": []interface{}{}})
	})
	client.Session().Set("tok", nil)
	client.Auth.Logout()

	_, err := client.Pets.ListMine(context.Background())
	apiErr, ok := AsError(err)
	if !ok {
		t.Fatalf("expected client error, got %v", err)
	}
	if !apiErr.IsAuthenticationRequired() {
		t.Errorf("expected authentication_required after logout, got %q", apiErr.Code)
	}
}

func validCreateInput() CreateListingInput {
	return CreateListingInput{
		Title:           "Lost cat",
		Description:     "Grey tabby, green collar",
		LastSeenAddress: "Abai Ave 10",
		LastSeenDate:    "2026-08-30",
	}
}

func TestPetsService_Create_ValidationOrder(t *testing.T) {
	calls := 0
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	client.Session().Set("tok", nil)

	cases := []struct {
		name   string
		mutate func(*CreateListingInput)
		field  string
	}{
		{"missing title", func(in *CreateListingInput) { in.Title = "" }, "title"},
		{"missing description", func(in *CreateListingInput) { in.Description = "" }, "description"},
		{"missing address", func(in *CreateListingInput) { in.LastSeenAddress = "" }, "last_seen_address"},
		{"missing date", func(in *CreateListingInput) { in.LastSeenDate = "" }, "last_seen_date"},
		// First missing field wins.
		{"all missing", func(in *CreateListingInput) { *in = CreateListingInput{} }, "title"},
	}
	for _, tc := range cases {
		in := validCreateInput()
		tc.mutate(&in)
		_, err := client.Pets.Create(context.Background(), in)
		apiErr, ok := AsError(err)
		if !ok || !apiErr.IsValidation() {
			t.Fatalf("%s: expected validation_error, got %v", tc.name, err)
		}
		if apiErr.Field != tc.field {
			t.Errorf("%s: expected field %q, got %q", tc.name, tc.field, apiErr.Field)
		}
	}
	if calls != 0 {
		t.Errorf("local validation failures must not reach the transport, got %d calls", calls)
	}
}

func TestPetsService_Create_RequiresAuthentication(t *testing.T) {
	calls := 0
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	_, err := client.Pets.Create(context.Background(), validCreateInput())
	apiErr, ok := AsError(err)
	if !ok || !apiErr.IsAuthenticationRequired() {
		t.Fatalf("expected authentication_required, got %v", err)
	}
	if calls != 0 {
		t.Errorf("unauthenticated create must not reach the transport, got %d calls", calls)
	}
}

func TestPetsService_Create_ProbeFailureShortCircuits(t *testing.T) {
	client := newDownClient(t)
	client.Session().Set("tok", nil)

	_, err := client.Pets.Create(context.Background(), validCreateInput())
	apiErr, ok := AsError(err)
	if !ok || apiErr.Code != CodeServerUnavailable {
		t.Fatalf("expected server_unavailable from the probe, got %v", err)
	}
}

func TestPetsService_Create(t *testing.T) {
	var posts int
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// Reachability probe.
			writeJSON(w, http.StatusOK, map[string]interface{}{"pet_posts": []interface{}{}})
			return
		}
		posts++
		if r.URL.Path != "/pets/" {
			t.Errorf("expected POST /pets/, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", r.Header.Get("Authorization"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		form := r.MultipartForm.Value
		if got := r.FormValue("title"); got != "Lost cat" {
			t.Errorf("expected title, got %q", got)
		}
		if got := r.FormValue("subject"); got != "Lost cat" {
			t.Errorf("title must be duplicated as subject, got %q", got)
		}
		if got := r.FormValue("pet_type"); got != "cat" {
			t.Errorf("expected default pet_type cat, got %q", got)
		}
		if got := r.FormValue("status"); got != "missing" {
			t.Errorf("expected default status missing, got %q", got)
		}
		// Valid latitude goes out; the unparseable longitude is
		// omitted entirely rather than blocking the request.
		if got := r.FormValue("latitude"); got != "12.5" {
			t.Errorf("expected latitude 12.5, got %q", got)
		}
		if _, present := form["longitude"]; present {
			t.Error("invalid longitude must be omitted from the payload")
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("expected image part: %v", err)
		}
		defer file.Close()
		if header.Filename != "cat.jpg" {
			t.Errorf("expected filename cat.jpg, got %q", header.Filename)
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"pet_post": listingJSON(77)})
	})
	client.Session().Set("tok", nil)

	in := validCreateInput()
	in.Latitude = "12.5"
	in.Longitude = "not-a-number"
	in.Image = &ImageAttachment{Filename: "cat.jpg", Data: []byte("jpegdata")}

	listing, err := client.Pets.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listing.ID != 77 {
		t.Errorf("expected server-assigned id 77, got %d", listing.ID)
	}
	if posts != 1 {
		t.Errorf("expected exactly one mutating call, got %d", posts)
	}
}

func TestPetsService_Create_RejectedTokenClearsSession(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusOK)
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Token has expired"})
	})
	client.Session().Set("stale", nil)

	_, err := client.Pets.Create(context.Background(), validCreateInput())
	apiErr, ok := AsError(err)
	if !ok || !apiErr.IsAuthenticationRequired() {
		t.Fatalf("expected authentication_required, got %v", err)
	}
	if client.Session().IsAuthenticated() {
		t.Error("rejected token during create must tear the session down")
	}
}

func TestPetsService_Create_ValidationFromServer(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusOK)
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "last_seen_date is malformed"})
	})
	client.Session().Set("tok", nil)

	_, err := client.Pets.Create(context.Background(), validCreateInput())
	apiErr, ok := AsError(err)
	if !ok || !apiErr.IsValidation() {
		t.Fatalf("expected validation_error, got %v", err)
	}
	if apiErr.Message != "last_seen_date is malformed" {
		t.Errorf("expected server detail, got %q", apiErr.Message)
	}
}

func TestPetsService_Update_PartialFieldsOnly(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPut || r.URL.Path != "/pets/5" {
			t.Errorf("expected PUT /pets/5, got %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		form := r.MultipartForm.Value
		if got := r.FormValue("status"); got != "found" {
			t.Errorf("expected status found, got %q", got)
		}
		for _, absent := range []string{"title", "description", "pet_type", "last_seen_address", "last_seen_date", "latitude", "longitude"} {
			if _, present := form[absent]; present {
				t.Errorf("field %q must not be sent in a partial update", absent)
			}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"pet_post": listingJSON(5)})
	})
	client.Session().Set("tok", nil)

	status := StatusFound
	listing, err := client.Pets.Update(context.Background(), 5, UpdateListingInput{Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listing.ID != 5 {
		t.Errorf("expected id 5, got %d", listing.ID)
	}
}

func TestPetsService_Update_RequiresAuthentication(t *testing.T) {
	calls := 0
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	title := "x"
	_, err := client.Pets.Update(context.Background(), 5, UpdateListingInput{Title: &title})
	apiErr, ok := AsError(err)
	if !ok || !apiErr.IsAuthenticationRequired() {
		t.Fatalf("expected authentication_required, got %v", err)
	}
	if calls != 0 {
		t.Errorf("unauthenticated update must not reach the transport, got %d calls", calls)
	}
}

func TestPetsService_Delete(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/pets/7" {
			t.Errorf("expected DELETE /pets/7, got %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{})
	})
	client.Session().Set("tok", nil)

	if err := client.Pets.Delete(context.Background(), 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPetsService_Delete_AlreadyGone(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Pet post not found"})
	})
	client.Session().Set("tok", nil)

	err := client.Pets.Delete(context.Background(), 7)
	apiErr, ok := AsError(err)
	if !ok || !apiErr.IsNotFound() {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestPetsService_Delete_RequiresAuthentication(t *testing.T) {
	calls := 0
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	err := client.Pets.Delete(context.Background(), 7)
	apiErr, ok := AsError(err)
	if !ok || !apiErr.IsAuthenticationRequired() {
		t.Fatalf("expected authentication_required, got %v", err)
	}
	if calls != 0 {
		t.Errorf("unauthenticated delete must not reach the transport, got %d calls", calls)
	}
}

func TestHasValidCoordinates(t *testing.T) {
	decode := func(t *testing.T, lat, lng string) Listing {
		t.Helper()
		var l Listing
		raw := `{"id":1,"latitude":` + lat + `,"longitude":` + lng + `}`
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return l
	}

	cases := []struct {
		name     string
		lat, lng string
		want     bool
	}{
		{"both numeric", "43.2", "76.9", true},
		{"string-encoded numbers", `"43.2"`, `"76.9"`, true},
		{"lat garbage", `"abc"`, "76.9", false},
		{"lng garbage", "43.2", `"abc"`, false},
		{"lat null", "null", "76.9", false},
		{"both null", "null", "null", false},
		{"empty strings", `""`, `""`, false},
	}
	for _, tc := range cases {
		l := decode(t, tc.lat, tc.lng)
		if got := HasValidCoordinates(l); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestFilterMappable(t *testing.T) {
	listings := []Listing{
		{ID: 1, Latitude: Coordinate{43.2, true}, Longitude: Coordinate{76.9, true}},
		{ID: 2, Latitude: Coordinate{43.2, true}},
		{ID: 3},
	}
	mappable := FilterMappable(listings)
	if len(mappable) != 1 || mappable[0].ID != 1 {
		t.Errorf("expected only listing 1, got %+v", mappable)
	}
}

func TestPetsService_Ping(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pets/" {
			t.Errorf("expected probe against /pets/, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := client.Pets.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPetsService_Ping_Down(t *testing.T) {
	client := newDownClient(t)

	err := client.Pets.Ping(context.Background())
	apiErr, ok := AsError(err)
	if !ok || apiErr.Code != CodeServerUnavailable {
		t.Fatalf("expected server_unavailable, got %v", err)
	}
}
