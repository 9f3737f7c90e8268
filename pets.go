package findmypet

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// PetsService fetches and mutates pet listings.
//
// Fetch operations report failures as fetch errors with the server's own
// message when it sent one. Mutations run a fail-fast pre-flight: local field
// validation, an authentication check, then a short reachability probe, so a
// doomed submission never waits out a full upload timeout.
type PetsService struct {
	client *Client
}

type petPostsResponse struct {
	PetPosts []Listing `json:"pet_posts"`
}

type petPostResponse struct {
	PetPost *Listing `json:"pet_post"`
}

// List fetches listings matching the filter. Empty filter fields are not
// sent as parameters at all.
func (s *PetsService) List(ctx context.Context, filter ListingFilter) ([]Listing, error) {
	path := "/pets/"
	if q := filter.values().Encode(); q != "" {
		path += "?" + q
	}
	var resp petPostsResponse
	if err := s.client.get(ctx, path, &resp); err != nil {
		return nil, asFetchError(err, "Failed to fetch pet posts")
	}
	return resp.PetPosts, nil
}

// Get fetches a single listing by id.
func (s *PetsService) Get(ctx context.Context, id int64) (*Listing, error) {
	var resp petPostResponse
	if err := s.client.get(ctx, fmt.Sprintf("/pets/%d", id), &resp); err != nil {
		if apiErr, ok := AsError(err); ok && apiErr.IsNotFound() {
			return nil, apiErr
		}
		return nil, asFetchError(err, "Failed to fetch pet post")
	}
	if resp.PetPost == nil {
		return nil, newError(CodeNotFound, "Pet post not found")
	}
	return resp.PetPost, nil
}

// ListMine fetches the listings owned by the current user. It attaches
// whatever token the session holds without double-checking it first; a
// headerless or stale-token call comes back as an authentication error, not
// a network one.
func (s *PetsService) ListMine(ctx context.Context) ([]Listing, error) {
	var resp petPostsResponse
	if err := s.client.getAuthed(ctx, "/pets/user", &resp); err != nil {
		if apiErr, ok := AsError(err); ok && apiErr.IsAuthenticationRequired() {
			return nil, apiErr
		}
		return nil, asFetchError(err, "Failed to fetch your pet posts")
	}
	return resp.PetPosts, nil
}

// CreateListingInput is a new listing submission. Coordinates are raw user
// input; each component is validated independently and dropped when it does
// not parse to a finite number.
type CreateListingInput struct {
	Title           string
	Description     string
	PetType         PetType       // defaults to cat
	Status          ListingStatus // defaults to missing
	LastSeenAddress string
	LastSeenDate    string
	Latitude        string
	Longitude       string
	Image           *ImageAttachment
}

// validate rejects the first missing required field, in a fixed order.
func (in CreateListingInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return validationError("title", "Title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return validationError("description", "Description is required")
	}
	if strings.TrimSpace(in.LastSeenAddress) == "" {
		return validationError("last_seen_address", "Last seen location is required")
	}
	if strings.TrimSpace(in.LastSeenDate) == "" {
		return validationError("last_seen_date", "Last seen date is required")
	}
	return nil
}

// Create submits a new listing and returns it with its server-assigned id.
func (s *PetsService) Create(ctx context.Context, in CreateListingInput) (*Listing, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if !s.client.session.IsAuthenticated() {
		return nil, newError(CodeAuthenticationRequired,
			"Authentication required. Please log in to create a listing.")
	}
	if err := s.Ping(ctx); err != nil {
		return nil, err
	}

	petType := in.PetType
	if petType == "" {
		petType = PetTypeCat
	}
	status := in.Status
	if status == "" {
		status = StatusMissing
	}

	form := newMultipartForm()
	// The backend historically read the title from a "subject" field;
	// both are sent for compatibility.
	form.addField("subject", in.Title)
	form.addField("title", in.Title)
	form.addField("description", in.Description)
	form.addField("pet_type", string(petType))
	form.addField("status", string(status))
	form.addField("last_seen_address", in.LastSeenAddress)
	form.addField("last_seen_date", in.LastSeenDate)
	form.addCoordinate("latitude", in.Latitude)
	form.addCoordinate("longitude", in.Longitude)
	form.addImage(in.Image)

	var resp petPostResponse
	if err := s.client.doMultipart(ctx, http.MethodPost, "/pets/", form, &resp); err != nil {
		return nil, asMutationError(err)
	}
	if resp.PetPost == nil {
		return nil, newError(CodeServerError, "Server response does not contain the created post")
	}
	return resp.PetPost, nil
}

// UpdateListingInput is a partial update. Only non-nil fields are sent, so
// omitted fields stay untouched server-side rather than being reset.
type UpdateListingInput struct {
	Title           *string
	Description     *string
	PetType         *PetType
	Status          *ListingStatus
	LastSeenAddress *string
	LastSeenDate    *string
	Latitude        string
	Longitude       string
	Image           *ImageAttachment
}

// Update modifies an existing listing. Ownership is enforced by the server;
// the client only does advisory checks for UI purposes.
func (s *PetsService) Update(ctx context.Context, id int64, in UpdateListingInput) (*Listing, error) {
	if !s.client.session.IsAuthenticated() {
		return nil, newError(CodeAuthenticationRequired,
			"Authentication required. Please log in to update a listing.")
	}
	if err := s.Ping(ctx); err != nil {
		return nil, err
	}

	form := newMultipartForm()
	if in.Title != nil {
		form.addField("title", *in.Title)
	}
	if in.Description != nil {
		form.addField("description", *in.Description)
	}
	if in.PetType != nil {
		form.addField("pet_type", string(*in.PetType))
	}
	if in.Status != nil {
		form.addField("status", string(*in.Status))
	}
	if in.LastSeenAddress != nil {
		form.addField("last_seen_address", *in.LastSeenAddress)
	}
	if in.LastSeenDate != nil {
		form.addField("last_seen_date", *in.LastSeenDate)
	}
	form.addCoordinate("latitude", in.Latitude)
	form.addCoordinate("longitude", in.Longitude)
	form.addImage(in.Image)

	var resp petPostResponse
	if err := s.client.doMultipart(ctx, http.MethodPut, fmt.Sprintf("/pets/%d", id), form, &resp); err != nil {
		return nil, asMutationError(err)
	}
	if resp.PetPost == nil {
		return nil, newError(CodeServerError, "Server response does not contain the updated post")
	}
	return resp.PetPost, nil
}

// Delete removes a listing. Deleting an id that is already gone surfaces the
// server's not-found answer; it is not treated specially.
func (s *PetsService) Delete(ctx context.Context, id int64) error {
	if !s.client.session.IsAuthenticated() {
		return newError(CodeAuthenticationRequired,
			"Authentication required. Please log in to delete a listing.")
	}
	if err := s.client.delete(ctx, fmt.Sprintf("/pets/%d", id)); err != nil {
		return asMutationError(err)
	}
	return nil
}

// Ping is a lightweight reachability probe against the listings endpoint,
// bounded well below the normal request timeout. Mutations call it before
// submitting so an unreachable backend fails fast instead of timing out a
// full upload.
func (s *PetsService) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := s.client.get(ctx, "/pets/", nil); err != nil {
		return newError(CodeServerUnavailable,
			"Server is not available. Please make sure the backend is running.")
	}
	return nil
}

// asFetchError folds read-path failures into the fetch error kind, keeping
// the server's message when one was sent and falling back to a generic
// per-operation message otherwise.
func asFetchError(err error, fallback string) error {
	apiErr, ok := AsError(err)
	if !ok {
		return err
	}
	msg := apiErr.Message
	if apiErr.StatusCode == 0 || msg == "" {
		msg = fallback
	}
	return &Error{StatusCode: apiErr.StatusCode, Code: CodeFetchError, Message: msg}
}

// asMutationError maps mutation failures: transport failures become the
// server-unavailable kind; auth rejections, validation detail and not-found
// pass through as mapped by the request layer.
func asMutationError(err error) error {
	apiErr, ok := AsError(err)
	if !ok {
		return err
	}
	if apiErr.Code == CodeNetworkUnavailable {
		return &Error{Code: CodeServerUnavailable, Message: apiErr.Message}
	}
	return apiErr
}
