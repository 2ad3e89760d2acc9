// Package password provides credential security primitives: adaptive one-way
// hashing, strength scoring with itemized feedback, and k-anonymity breach
// lookups against the Have I Been Pwned range API.
package password
