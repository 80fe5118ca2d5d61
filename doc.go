/*
Package indexedredis implements an indexed object mapping on top of a
key-value store (in this case, on top of Bolt or an in-memory store).

We implement:

1. Models, schemas of named typed fields declared immutably at startup.

2. Records, dynamic objects holding one typed value per field, with a
persisted baseline for dirty diffing.

3. Secondary indexes, allowing equality lookup of records by field value,
optionally through an MD5 digest of the stored form.

4. Links, lazily resolved references to records of another (or the same)
model, with cascading save, fetch and reload.

# Technical Details

**Null.**
Every field can hold the null sentinel. Null is distinct from every ordinary
value, including the empty string and false, and renders as the empty storage
form. Decoding an empty storage form yields null for typed fields and the
empty value for string-like fields.

**Storage forms.**
A record is stored as a map from field name to storage bytes: integers in
decimal, booleans as "true"/"false", floats in Go 'g' format, fixed-point
decimals with a declared number of places, strings and byte fields raw, and
links as the decimal id of their target. Compressed fields store a
zlib/zstd/lz4 frame and pass data through untouched when it already carries
the frame's magic header.

**Index entries.**
An index over a field is a set of (value, id) pairs keyed by the field's
storage form, or by its MD5 hex digest for hashed indexes. Updating a record
removes the entries derived from the old stored values and adds the new ones
in the same transaction that writes the record.

**Store.**
The physical backend sits behind the Store interface: per-model records,
one id sequence and one entry set per indexed field, mutated through
transactions. Bolt implements this with nested buckets; a flat database like
Redis could implement it via key prefixes, hashes and sets.
*/
package indexedredis
