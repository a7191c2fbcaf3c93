package model

import "time"

// FolderMIMEType marks a remote item as a folder.
const FolderMIMEType = "application/vnd.google-apps.folder"

// RemoteItem is a snapshot of one node in the remote tree.
type RemoteItem struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	MIMEType       string    `json:"mimeType"`
	ParentIDs      []string  `json:"parents,omitempty"`
	Size           int64     `json:"size"`
	ModifiedTime   time.Time `json:"modifiedTime"`
	WebContentLink string    `json:"webContentLink,omitempty"`
}

// IsFolder reports whether the item carries the folder type marker.
func (i RemoteItem) IsFolder() bool {
	return i.MIMEType == FolderMIMEType
}

// FirstParent returns the first listed parent id. ok is false when the item has no parent.
func (i RemoteItem) FirstParent() (id string, ok bool) {
	if len(i.ParentIDs) == 0 || i.ParentIDs[0] == "" {
		return "", false
	}
	return i.ParentIDs[0], true
}

// ChildPage is one page of a folder listing.
type ChildPage struct {
	Items         []RemoteItem
	NextPageToken string
}

// StoredCredential is the persisted OAuth2 credential of one account profile.
type StoredCredential struct {
	Account               string    `json:"account" dynamodbav:"account"`
	Email                 string    `json:"email,omitempty" dynamodbav:"email"`
	EncryptedRefreshToken string    `json:"encrypted_refresh_token" dynamodbav:"encrypted_refresh_token"`
	AccessToken           string    `json:"access_token,omitempty" dynamodbav:"access_token"`
	Expiry                time.Time `json:"expiry" dynamodbav:"expiry"`
	UpdatedAt             time.Time `json:"updated_at" dynamodbav:"updated_at"`
}
