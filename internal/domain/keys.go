package domain

// KeyPrefix namespaces every key this client writes to the store.
const KeyPrefix = "helio:"
