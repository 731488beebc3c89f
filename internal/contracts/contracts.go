package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"regexp"
	"strings"

	"listing-service/internal/core/domain"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	EventTypeListingSaved      = "ListingSavedEvent"
	EventTypeListingEngagement = "ListingEngagementEvent"
	RequestListingSubmission   = "ListingSubmissionRequest"
	VersionV1                  = "1.0.0"
)

var ErrMalformedBody = errors.New("message body is not a valid JSON")

var compiledSchemas = make(map[string]*jsonschema.Schema)

var quotedNameRe = regexp.MustCompile(`'([^']+)'`)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	var paths []string
	for _, root := range []string{"events", "requests"} {
		err := fs.WalkDir(SchemasFS, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".json") {
				return nil
			}
			file, err := SchemasFS.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()
			if err := compiler.AddResource(path, file); err != nil {
				return fmt.Errorf("add schema resource %s: %w", path, err)
			}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			log.Fatalf("error walking and adding schema resources: %v", err)
		}
	}

	for _, path := range paths {
		schema, err := compiler.Compile(path)
		if err != nil {
			log.Fatalf("failed to compile schema %s: %v", path, err)
		}
		key := generateKeyFromPath(path)
		if key == "" {
			log.Fatalf("schema path %s does not follow <kind>/<name>/v<N>.json", path)
		}
		compiledSchemas[key] = schema
	}
}

// generateKeyFromPath turns "events/listing-engagement/v1.json" into
// "ListingEngagementEvent/1.0.0" and "requests/listing-submission/v1.json"
// into "ListingSubmissionRequest/1.0.0".
func generateKeyFromPath(path string) string {
	parts := strings.Split(strings.TrimSuffix(path, ".json"), "/")
	if len(parts) != 3 || !strings.HasPrefix(parts[2], "v") {
		return ""
	}

	var suffix string
	switch parts[0] {
	case "events":
		suffix = "Event"
	case "requests":
		suffix = "Request"
	default:
		return ""
	}

	caser := cases.Title(language.English)
	var name strings.Builder
	for _, p := range strings.Split(parts[1], "-") {
		name.WriteString(caser.String(p))
	}
	name.WriteString(suffix)

	version := strings.TrimPrefix(parts[2], "v") + ".0.0"
	return fmt.Sprintf("%s/%s", name.String(), version)
}

func validate(key string, body []byte) error {
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema %q not found", key)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	return schema.Validate(v)
}

// ValidateEvent checks a message body against the schema named by its
// event-type and event-version headers.
func ValidateEvent(eventType, eventVersion string, body []byte) error {
	if err := validate(eventType+"/"+eventVersion, body); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}

// ValidateSubmission checks the shape of a create or replace body. Schema
// violations come back as *domain.ValidationError.
func ValidateSubmission(body []byte) error {
	err := validate(RequestListingSubmission+"/"+VersionV1, body)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		return &domain.ValidationError{Fields: FieldErrors(verr)}
	}
	return err
}

// FieldErrors flattens a schema validation tree into one entry per leaf.
func FieldErrors(verr *jsonschema.ValidationError) []domain.FieldError {
	var out []domain.FieldError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}
		base := pointerToPath(e.InstanceLocation)
		if strings.HasPrefix(e.Message, "missing properties") {
			for _, m := range quotedNameRe.FindAllStringSubmatch(e.Message, -1) {
				out = append(out, domain.FieldError{Field: joinPath(base, m[1]), Message: "is required"})
			}
			return
		}
		if base == "" {
			base = "body"
		}
		out = append(out, domain.FieldError{Field: base, Message: e.Message})
	}
	walk(verr)
	return out
}

// pointerToPath converts a JSON pointer such as "/unitTypes/0/label" into "unitTypes[0].label".
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for i, seg := range strings.Split(ptr, "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		if isIndex(seg) {
			b.WriteString("[" + seg + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

func isIndex(seg string) bool {
	if seg == "" {
		return false
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
