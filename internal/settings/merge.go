package settings

// Merge implements the Configuration Loader's pure merge function (§4.3):
// incoming is overlaid onto existing, with secret sentinels resolved
// (SentinelSet preserves the existing value, SentinelUnset/empty clears
// it). It returns the merged slice and the keys whose effective value
// changed.
func Merge(existing, incoming []Setting) (merged []Setting, changed []string) {
	byKey := make(map[string]Setting, len(existing))
	for _, s := range existing {
		byKey[s.Key] = s
	}

	for _, in := range incoming {
		key := Key(in.Key)
		if !IsRecognized(key) {
			continue // unrecognized keys are skipped, not rejected
		}

		resolved := in
		if IsSecret(key) {
			switch in.Value {
			case SentinelSet:
				if prev, ok := byKey[in.Key]; ok {
					resolved.Value = prev.Value
				} else {
					resolved.Value = ""
				}
			case SentinelUnset, "":
				resolved.Value = ""
			}
		}

		prev, existed := byKey[in.Key]
		if !existed || prev.Value != resolved.Value {
			changed = append(changed, in.Key)
		}
		byKey[in.Key] = resolved
	}

	merged = make([]Setting, 0, len(byKey))
	for _, s := range byKey {
		merged = append(merged, s)
	}
	return merged, changed
}

// MaskForDisplay converts a plaintext secret value to its GET-response
// sentinel, and passes non-secret keys through unchanged.
func MaskForDisplay(key string, value string) string {
	if !IsSecret(Key(key)) {
		return value
	}
	if value == "" {
		return SentinelUnset
	}
	return SentinelSet
}
