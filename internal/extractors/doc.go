// Package extractors provides implementations of the TextExtractor interface.
// Each extractor turns the raw bytes of one document format into page text.
package extractors
