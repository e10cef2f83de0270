package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"darlingdetails/pkg/catalog"
	"darlingdetails/pkg/media"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// multipartOverhead is the room left for form fields on top of the image ceiling.
const multipartOverhead = 1 << 20

var errUnexpectedField = errors.New("unexpected file field")

// productInput is the request shape shared by create and update. A nil field
// was absent from the request.
type productInput struct {
	Name        *string
	Price       *string
	Description *string
	Quantity    *string
	CategoryID  *string
}

// jsonProductInput accepts numbers either quoted or bare.
type jsonProductInput struct {
	Name        *string     `json:"name"`
	Price       *flexString `json:"price"`
	Description *string     `json:"description"`
	Quantity    *flexString `json:"quantity"`
	CategoryID  *flexString `json:"categoryId"`
}

type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

func (f *flexString) ptr() *string {
	if f == nil {
		return nil
	}
	s := string(*f)
	return &s
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (s *server) listProductsHandler(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	items, err := s.products.List(c.Request.Context(), f)
	if err != nil {
		s.serverError(c, err, "list products failed")
		return
	}
	respond(c, http.StatusOK, "", items)
}

func (s *server) getProductHandler(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	p, err := s.products.Get(c.Request.Context(), id)
	if err != nil {
		s.productError(c, err)
		return
	}
	respond(c, http.StatusOK, "", p)
}

func (s *server) createProductHandler(c *gin.Context) {
	in, upload, cleanup, err := s.readProductRequest(c)
	defer cleanup()
	if err != nil {
		s.productError(c, err)
		return
	}
	d, err := in.draft()
	if err != nil {
		s.productError(c, err)
		return
	}
	p, err := s.products.Create(c.Request.Context(), d, upload)
	if err != nil {
		s.productError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Product created successfully", p)
}

func (s *server) updateProductHandler(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	in, upload, cleanup, err := s.readProductRequest(c)
	defer cleanup()
	if err != nil {
		s.productError(c, err)
		return
	}
	ch, err := in.changes()
	if err != nil {
		s.productError(c, err)
		return
	}
	p, err := s.products.Update(c.Request.Context(), id, ch, upload)
	if err != nil {
		s.productError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product updated successfully", p)
}

func (s *server) deleteProductHandler(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	if err := s.products.Delete(c.Request.Context(), id); err != nil {
		s.productError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product deleted successfully", nil)
}

// readProductRequest parses a JSON, urlencoded or multipart body. A multipart
// "image" file is spooled into the uploads root; cleanup removes the spooled
// copy if generation did not already discard it.
func (s *server) readProductRequest(c *gin.Context) (productInput, *media.UploadCandidate, func(), error) {
	noop := func() {}
	var in productInput
	if c.ContentType() == gin.MIMEJSON {
		var body jsonProductInput
		if err := c.ShouldBindJSON(&body); err != nil {
			return in, nil, noop, fmt.Errorf("%w: %w", catalog.ErrInvalidProduct, err)
		}
		in = productInput{
			Name:        body.Name,
			Price:       body.Price.ptr(),
			Description: body.Description,
			Quantity:    body.Quantity.ptr(),
			CategoryID:  body.CategoryID.ptr(),
		}
		return in, nil, noop, nil
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload+multipartOverhead)
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, nil, noop, fmt.Errorf("%w: request body over %d bytes", media.ErrPayloadTooLarge, tooLarge.Limit)
		}
		return in, nil, noop, fmt.Errorf("%w: %w", catalog.ErrInvalidProduct, err)
	}
	if c.Request.PostForm == nil {
		if err := c.Request.ParseForm(); err != nil {
			return in, nil, noop, fmt.Errorf("%w: %w", catalog.ErrInvalidProduct, err)
		}
	}
	in = productInput{
		Name:        formValue(c, "name"),
		Price:       formValue(c, "price"),
		Description: formValue(c, "description"),
		Quantity:    formValue(c, "quantity"),
		CategoryID:  formValue(c, "categoryId"),
	}

	fh, err := singleImage(c.Request.MultipartForm)
	if err != nil || fh == nil {
		return in, nil, noop, err
	}
	spooled := filepath.Join(s.spoolDir, media.SpoolName(fh.Filename))
	if err := c.SaveUploadedFile(fh, spooled); err != nil {
		return in, nil, noop, fmt.Errorf("%w: spool upload: %w", media.ErrProcessing, err)
	}
	cleanup := func() {
		if err := os.Remove(spooled); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warn().Err(err).Str("path", spooled).Msg("failed to remove spooled upload")
		}
	}
	return in, &media.UploadCandidate{
		OriginalFilename: fh.Filename,
		SizeBytes:        fh.Size,
		Source:           media.FileSource(spooled),
	}, cleanup, nil
}

// singleImage returns the "image" file, rejecting any other file field or a
// second image.
func singleImage(form *multipart.Form) (*multipart.FileHeader, error) {
	if form == nil {
		return nil, nil
	}
	for field, files := range form.File {
		if field != "image" || len(files) > 1 {
			return nil, fmt.Errorf("%w: %s", errUnexpectedField, field)
		}
	}
	if files := form.File["image"]; len(files) == 1 {
		return files[0], nil
	}
	return nil, nil
}

func formValue(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok {
		return &v
	}
	return nil
}

func (in productInput) draft() (catalog.Draft, error) {
	var d catalog.Draft
	if in.Name != nil {
		d.Name = strings.TrimSpace(*in.Name)
	}
	var err error
	if d.Price, err = parseFloatField("price", in.Price); err != nil {
		return d, err
	}
	if d.Quantity, err = parseIntField("quantity", in.Quantity); err != nil {
		return d, err
	}
	if d.CategoryID, err = parseUintField("categoryId", in.CategoryID); err != nil {
		return d, err
	}
	d.Description = in.Description
	return d, nil
}

func (in productInput) changes() (catalog.Changes, error) {
	var ch catalog.Changes
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		ch.Name = &name
	}
	var err error
	if ch.Price, err = parseFloatField("price", in.Price); err != nil {
		return ch, err
	}
	if ch.Quantity, err = parseIntField("quantity", in.Quantity); err != nil {
		return ch, err
	}
	if in.CategoryID != nil && isBlank(*in.CategoryID) {
		ch.ClearCategory = true
	} else if ch.CategoryID, err = parseUintField("categoryId", in.CategoryID); err != nil {
		return ch, err
	}
	ch.Description = in.Description
	return ch, nil
}

type invalidFieldError struct {
	field string
	value string
}

func (e invalidFieldError) Error() string {
	return fmt.Sprintf("%s: %q is not a valid number", e.field, e.value)
}

func (e invalidFieldError) Unwrap() error { return catalog.ErrInvalidProduct }

func isBlank(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "null"
}

func parseFloatField(field string, v *string) (*float64, error) {
	if v == nil || isBlank(*v) {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*v), 64)
	if err != nil {
		return nil, invalidFieldError{field: field, value: *v}
	}
	return &f, nil
}

func parseIntField(field string, v *string) (*int, error) {
	if v == nil || isBlank(*v) {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*v))
	if err != nil {
		return nil, invalidFieldError{field: field, value: *v}
	}
	return &n, nil
}

func parseUintField(field string, v *string) (*uint, error) {
	if v == nil || isBlank(*v) {
		return nil, nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(*v), 10, 0)
	if err != nil {
		return nil, invalidFieldError{field: field, value: *v}
	}
	u := uint(n)
	return &u, nil
}

func parseID(c *gin.Context, param string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(param), 10, 0)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func parseFilter(c *gin.Context) (catalog.Filter, error) {
	f := catalog.Filter{
		Name:    strings.TrimSpace(c.Query("name")),
		InStock: c.Query("inStock") == "true",
	}
	var err error
	if v, ok := c.GetQuery("minPrice"); ok {
		if f.MinPrice, err = parseFloatField("minPrice", &v); err != nil {
			return f, err
		}
	}
	if v, ok := c.GetQuery("maxPrice"); ok {
		if f.MaxPrice, err = parseFloatField("maxPrice", &v); err != nil {
			return f, err
		}
	}
	if v, ok := c.GetQuery("categoryId"); ok {
		if f.CategoryID, err = parseUintField("categoryId", &v); err != nil {
			return f, err
		}
	}
	return f, nil
}

// productError maps lifecycle and media errors to responses.
func (s *server) productError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	var ferr invalidFieldError
	switch {
	case errors.Is(err, media.ErrUnsupportedFormat):
		fail(c, http.StatusBadRequest, "Only image files are allowed!")
	case errors.Is(err, media.ErrPayloadTooLarge):
		fail(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large. Maximum size is %d MB", s.maxUpload>>20))
	case errors.Is(err, media.ErrProcessing):
		s.log.Error().Err(err).Str("path", c.FullPath()).Msg("image processing failed")
		fail(c, http.StatusInternalServerError, "Error processing image")
	case errors.Is(err, errUnexpectedField):
		fail(c, http.StatusBadRequest, "Unexpected field")
	case errors.Is(err, catalog.ErrProductNotFound):
		fail(c, http.StatusNotFound, "Product not found")
	case errors.Is(err, catalog.ErrCategoryNotFound):
		fail(c, http.StatusBadRequest, "The specified category does not exist")
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation error", "errors": fieldErrors(verrs)})
	case errors.As(err, &ferr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation error", "errors": []fieldError{{Field: ferr.field, Message: ferr.Error()}}})
	case errors.Is(err, catalog.ErrInvalidProduct):
		fail(c, http.StatusBadRequest, "Validation error")
	default:
		s.serverError(c, err, "product request failed")
	}
}

var fieldNames = map[string]string{
	"Name":       "name",
	"Price":      "price",
	"Quantity":   "quantity",
	"CategoryID": "categoryId",
}

func fieldErrors(verrs validator.ValidationErrors) []fieldError {
	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		name := fieldNames[fe.Field()]
		if name == "" {
			name = fe.Field()
		}
		out = append(out, fieldError{Field: name, Message: fieldMessage(name, fe)})
	}
	return out
}

func fieldMessage(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "min", "max":
		return fmt.Sprintf("%s must be between 2 and 100 characters", name)
	case "gte", "gt":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}
