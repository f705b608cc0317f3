// Package dataprovider declares the typed external collaborator interfaces
// that feed raw market data into the orchestration layer: OHLCV history,
// news, social posts, fundamentals, and CPU-bound technical indicators.
//
// Concrete fetchers (HTTP clients against third-party market-data APIs) are
// out of scope for this module; only the interfaces and the typed error
// taxonomy that every implementation must honor live here, mirroring the way
// providers/ai.Provider is implemented independently per vendor but shares
// one interface.
package dataprovider
