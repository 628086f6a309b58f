package common

// ShareFolderPath is the route under which folders are published and fetched.
// Fetch appends "/{id}".
const ShareFolderPath = "/api/share/folder"

// JSONContentType is the media type of request bodies and stored payloads.
const JSONContentType = "application/json"
