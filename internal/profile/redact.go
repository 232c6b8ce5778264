package profile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Redact computes the public projection of a canonical document under the
// given visibility settings. It is a pure function; the engine calls it once
// at publish time and freezes the result into the snapshot.
func Redact(d Document, v Visibility) Document {
	var out Document
	if v.Name {
		out.Name = d.Name
	}
	if v.Headline {
		out.Headline = d.Headline
	}
	if v.Summary {
		out.Summary = d.Summary
	}
	if v.Location {
		out.Location = d.Location
	}
	if v.Email {
		out.Email = d.Email
	}
	if v.Skills {
		out.Skills = d.Skills
	}
	if v.Links {
		out.Links = d.Links
	}
	if v.Experience {
		out.Experience = d.Experience
	}
	if v.Projects {
		out.Projects = d.Projects
	}
	if v.Education {
		out.Education = d.Education
	}
	return out
}

// Digest returns the hex sha256 of the canonical JSON encoding. Struct field
// order makes the encoding deterministic, so equal documents hash equal.
func Digest(d Document) (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
