package processor

import "encoding/base64"

func toBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
