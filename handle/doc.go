// Package handle persists the long-lived refresh handle in durable
// client-side storage. The handle is consumed to mint new access credentials
// and is replaced only at login or when the server rotates it on refresh.
// The access credential itself never goes through this package.
package handle
