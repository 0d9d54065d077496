package mergin

import (
	"github.com/goccy/go-json"
)

// for imroc/req and metadata documents
var jsonMarshal = json.Marshal
var jsonUnmarshal = json.Unmarshal
