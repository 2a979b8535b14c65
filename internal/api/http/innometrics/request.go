package innometrics

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// maxFormMemory bounds form parsing.
const maxFormMemory = 8 << 20

// requestData returns the JSON body, or the form values when the body is not
// JSON. Query parameters fill keys the body does not set.
func requestData(c *gin.Context) (map[string]any, error) {
	data := make(map[string]any)

	switch c.ContentType() {
	case gin.MIMEJSON:
		if err := c.ShouldBindJSON(&data); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("malformed json body: %w", err)
		}

		return data, nil
	case gin.MIMEPOSTForm:
		// Read explicitly: ParseForm ignores bodies of DELETE requests.
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxFormMemory))
		if err != nil {
			return nil, fmt.Errorf("failed to read form: %w", err)
		}

		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, fmt.Errorf("malformed form: %w", err)
		}

		merge(data, values)
	default:
		if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("malformed form: %w", err)
		}

		if c.Request.MultipartForm != nil {
			merge(data, c.Request.MultipartForm.Value)
		}
	}

	merge(data, c.Request.URL.Query())

	return data, nil
}

func merge(data map[string]any, values map[string][]string) {
	for key, list := range values {
		if _, ok := data[key]; !ok && len(list) > 0 {
			data[key] = list[0]
		}
	}
}

// text returns data[key] when it is a string.
func text(data map[string]any, key string) string {
	value, _ := data[key].(string)

	return value
}
