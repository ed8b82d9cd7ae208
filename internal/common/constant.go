package common

// AuthorizationHeaderName is the HTTP header used to carry the bearer token
// on outbound API requests.
const AuthorizationHeaderName = "Authorization"

// AdhocRecordID is the record-id slot used in draft keys for drafts that are
// not yet associated with any server-side record.
const AdhocRecordID = "adhoc"
