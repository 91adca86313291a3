// Package engine defines the capability surface boolgo requires from a
// boolean-retrieval engine: handle management, document replacement by unique
// term, boolean/phrase query execution, term enumeration, spelling lookup and
// relevance-set expansion, plus the engine's order-preserving float
// serialization.
//
// The adapter layers in the root package are written against these interfaces
// only; engine/memory provides a complete local implementation.
package engine
