// Package services holds docchat's core logic: ingesting PDFs into stores,
// retrieving passages across stores, and answering questions from them.
//
// Services only see ports. Adapters are chosen and wired in internal/app.
package services
