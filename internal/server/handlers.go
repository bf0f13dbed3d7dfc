package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/user/filmshelf/internal/model"
	"github.com/user/filmshelf/internal/store"
	"github.com/user/filmshelf/internal/tmdb"
)

// editFormData carries the state of the rating/review form
type editFormData struct {
	Movie  *model.Movie
	Rating string
	Review string
	Errors map[string]string
	Token  string
}

// addFormData carries the state of the title search form
type addFormData struct {
	Title string
	Error string
	Token string
}

// handleIndex renders the collection ordered by rank, best movie first
func (s *Server) handleIndex(c *gin.Context) {
	movies, err := s.service.ListRanked(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list collection")
		RecordError("store")
		c.String(http.StatusInternalServerError, "failed to load the collection")
		return
	}

	UpdateMovieCount(int64(len(movies)))

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Movies": movies,
	})
}

// handleDelete removes the referenced movie and redirects to the list.
// A missing or malformed id is a no-op: deletion is idempotent.
func (s *Server) handleDelete(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	if err := s.service.RemoveMovie(c.Request.Context(), id); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Uint("id", id).Msg("Failed to delete movie")
			RecordError("store")
			c.String(http.StatusInternalServerError, "failed to delete the movie")
			return
		}
	}

	c.Redirect(http.StatusFound, "/")
}

// handleEditForm shows the rating/review form for a movie, pre-populated
// with its current values. Unknown ids get a not-found page.
func (s *Server) handleEditForm(c *gin.Context) {
	movie, ok := s.lookupMovie(c)
	if !ok {
		return
	}

	form := editFormData{
		Movie:  movie,
		Review: movie.Review,
		Token:  s.signer.Generate(),
	}
	if movie.Rating != nil {
		form.Rating = strconv.FormatFloat(*movie.Rating, 'f', -1, 64)
	}

	c.HTML(http.StatusOK, "edit.html", form)
}

// handleEditSubmit validates and applies a rating/review submission
func (s *Server) handleEditSubmit(c *gin.Context) {
	movie, ok := s.lookupMovie(c)
	if !ok {
		return
	}

	form := editFormData{
		Movie:  movie,
		Rating: strings.TrimSpace(c.PostForm("rating")),
		Review: strings.TrimSpace(c.PostForm("review")),
		Errors: make(map[string]string),
		Token:  s.signer.Generate(),
	}

	if !s.signer.Verify(c.PostForm("_token")) {
		form.Errors["form"] = "The form has expired, please try again."
		c.HTML(http.StatusBadRequest, "edit.html", form)
		return
	}

	var rating float64
	if form.Rating == "" {
		form.Errors["rating"] = "Rating is required."
	} else {
		var err error
		rating, err = strconv.ParseFloat(form.Rating, 64)
		if err != nil {
			form.Errors["rating"] = "Rating must be a number."
		}
	}
	if form.Review == "" {
		form.Errors["review"] = "Review is required."
	}

	if len(form.Errors) > 0 {
		c.HTML(http.StatusOK, "edit.html", form)
		return
	}

	if err := s.service.RateMovie(c.Request.Context(), movie.ID, rating, form.Review); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.renderNotFound(c)
			return
		}
		log.Error().Err(err).Uint("id", movie.ID).Msg("Failed to update rating")
		RecordError("store")
		c.String(http.StatusInternalServerError, "failed to save the rating")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// handleAddForm shows the title search form
func (s *Server) handleAddForm(c *gin.Context) {
	c.HTML(http.StatusOK, "add.html", addFormData{
		Token: s.signer.Generate(),
	})
}

// handleAddSearch searches the metadata service by title and renders the
// candidate list for disambiguation
func (s *Server) handleAddSearch(c *gin.Context) {
	form := addFormData{
		Title: strings.TrimSpace(c.PostForm("title")),
		Token: s.signer.Generate(),
	}

	if !s.signer.Verify(c.PostForm("_token")) {
		form.Error = "The form has expired, please try again."
		c.HTML(http.StatusBadRequest, "add.html", form)
		return
	}

	if form.Title == "" {
		form.Error = "Movie title is required."
		c.HTML(http.StatusOK, "add.html", form)
		return
	}

	start := time.Now()
	candidates, err := s.service.SearchCandidates(c.Request.Context(), form.Title)
	RecordMetadataDuration(time.Since(start))
	if err != nil {
		log.Error().Err(err).Str("title", form.Title).Msg("Metadata search failed")
		RecordError("metadata")
		form.Error = "The movie service did not respond, please try again."
		c.HTML(http.StatusBadGateway, "add.html", form)
		return
	}

	c.HTML(http.StatusOK, "select.html", gin.H{
		"Query":      form.Title,
		"Candidates": candidates,
	})
}

// handleImport imports the selected candidate and redirects into the edit
// form of the new record so the user can rate it
func (s *Server) handleImport(c *gin.Context) {
	externalID, err := strconv.Atoi(c.Query("id"))
	if err != nil || externalID <= 0 {
		c.Redirect(http.StatusFound, "/add")
		return
	}

	start := time.Now()
	movie, err := s.service.ImportByExternalID(c.Request.Context(), externalID)
	RecordMetadataDuration(time.Since(start))
	if err != nil {
		form := addFormData{Token: s.signer.Generate()}

		switch {
		case errors.Is(err, store.ErrDuplicateTitle):
			RecordImport("duplicate")
			form.Error = "That movie is already in your collection."
			c.HTML(http.StatusOK, "add.html", form)
		case isExternalError(err):
			log.Error().Err(err).Int("externalID", externalID).Msg("Metadata import failed")
			RecordImport("error")
			RecordError("metadata")
			form.Error = "The movie service did not respond, please try again."
			c.HTML(http.StatusBadGateway, "add.html", form)
		default:
			log.Error().Err(err).Int("externalID", externalID).Msg("Failed to import movie")
			RecordImport("error")
			RecordError("store")
			c.String(http.StatusInternalServerError, "failed to import the movie")
		}
		return
	}

	RecordImport("success")
	c.Redirect(http.StatusFound, fmt.Sprintf("/edit/%d", movie.ID))
}

// lookupMovie resolves the :id path parameter to a movie, rendering the
// not-found page when it does not resolve
func (s *Server) lookupMovie(c *gin.Context) (*model.Movie, bool) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		s.renderNotFound(c)
		return nil, false
	}

	movie, err := s.service.GetMovie(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.renderNotFound(c)
			return nil, false
		}
		log.Error().Err(err).Uint("id", id).Msg("Failed to load movie")
		RecordError("store")
		c.String(http.StatusInternalServerError, "failed to load the movie")
		return nil, false
	}

	return movie, true
}

func (s *Server) renderNotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "notfound.html", nil)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

func isExternalError(err error) bool {
	var tErr *tmdb.Error
	return errors.As(err, &tErr)
}
