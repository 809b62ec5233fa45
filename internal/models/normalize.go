package models

// The gateway's response schema is loosely specified and has drifted
// across versions: the same semantic field shows up under different key
// names depending on the deployment. Normalization resolves each field
// through an ordered candidate-key table so the frontend can always rely
// on `id`, `transactionId` and `pix.qrcode` being present.

// Candidate key tables, in lookup order.
var (
	transactionIDKeys = []string{"transactionId", "id"}
	pixCodeKeys       = []string{"qrcode", "qrCode", "copyPaste", "code"}
	dataPixCodeKeys   = []string{"qrcode", "qrCode", "pixCode"}
)

// firstValue returns the first non-empty value found under the candidate
// keys. Empty strings and explicit nulls do not count as present.
func firstValue(m map[string]any, keys []string) any {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			continue
		}
		return v
	}
	return nil
}

// asMap returns v as a generic JSON object, or nil.
func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// copyMap makes a shallow copy so normalization never mutates the parsed
// gateway response.
func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+2)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// NormalizeSaleResult reshapes a raw gateway create-sale response so that
// the transaction identifier is discoverable under both `id` and
// `transactionId`, and the PIX copy-paste code under `pix.qrcode`. The
// gateway's original envelope fields (success/message wrappers, unknown
// keys) are preserved verbatim. A `data`-wrapped response is normalized
// inside `data` with the wrapper kept.
func NormalizeSaleResult(root map[string]any) map[string]any {
	if root == nil {
		return map[string]any{}
	}

	data := asMap(root["data"])
	wrapped := data != nil
	if data == nil {
		data = root
	}

	transactionID := firstValue(data, transactionIDKeys)
	if transactionID == nil {
		transactionID = firstValue(root, transactionIDKeys)
	}

	pixObj := asMap(data["pix"])
	if pixObj == nil {
		pixObj = asMap(root["pix"])
	}

	var pixCode any
	if pixObj != nil {
		pixCode = firstValue(pixObj, pixCodeKeys)
	}
	if pixCode == nil {
		pixCode = firstValue(data, dataPixCodeKeys)
	}

	normalized := copyMap(data)
	if firstValue(normalized, []string{"id"}) == nil {
		normalized["id"] = transactionID
	}
	if firstValue(normalized, []string{"transactionId"}) == nil {
		normalized["transactionId"] = transactionID
	}

	var pix map[string]any
	if pixObj != nil {
		pix = copyMap(pixObj)
	} else {
		pix = map[string]any{}
	}
	if firstValue(pix, []string{"qrcode"}) == nil {
		pix["qrcode"] = pixCode
	}
	normalized["pix"] = pix

	if wrapped {
		out := copyMap(root)
		out["data"] = normalized
		return out
	}
	return normalized
}
