package providers

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ocrResponseSchema pins the minimum shape the client relies on. The
// remote response is dynamic; anything that fails this check is
// rejected as a service error instead of flowing inward untyped.
const ocrResponseSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["pages"],
  "properties": {
    "model": { "type": "string" },
    "pages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["index", "markdown"],
        "properties": {
          "index": { "type": "integer", "minimum": 0 },
          "markdown": { "type": "string" },
          "images": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id"],
              "properties": {
                "id": { "type": "string" },
                "image_base64": { "type": ["string", "null"] }
              }
            }
          }
        }
      }
    },
    "usage_info": {
      "type": ["object", "null"],
      "properties": {
        "pages_processed": { "type": "integer" },
        "doc_size_bytes": { "type": ["integer", "null"] }
      }
    }
  }
}`

var compiledOCRSchema = jsonschema.MustCompileString("ocr-response.json", ocrResponseSchema)

// validateOCRResponse checks a raw OCR payload against the expected
// shape before decoding.
func validateOCRResponse(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return WrapError(KindService, err, "OCR response is not valid JSON")
	}
	if err := compiledOCRSchema.Validate(v); err != nil {
		return WrapError(KindService, err, "OCR response has unexpected shape")
	}
	return nil
}
