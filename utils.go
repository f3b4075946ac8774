package feeder

import (
	"encoding/json"
	"fmt"
	"io"
)

func JsonPrint(w io.Writer, tag string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "%s: error marshaling: %v\n", tag, err)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", tag, string(b))
}
