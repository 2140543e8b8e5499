// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TextExtractor: Turns uploaded bytes into per-page text
//   - PostProcessor: Splits pages into chunks (the chunker)
//   - EmbeddingService: Generates vector embeddings for chunks and questions
//   - StoreRegistry: Persists embedded stores and resolves them by id
//   - DocumentStore: Similarity search over one persisted store
//   - LLMService: Generates answers from a question and retrieved context
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - PromptStore: User-customisable prompt templates. Built-in defaults apply when nil.
//   - AIConfigValidator: Connectivity checks used by the settings commands.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, extractor, or post-processor package
package driven
