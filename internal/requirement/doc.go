// Package requirement parses PEP 508 dependency specifiers such as
// `pydash (>=7.0.6,<8.0.0)` or `faiss-cpu>=1.7 ; extra == "vectordb"` and
// evaluates their environment markers against a marker environment.
package requirement
