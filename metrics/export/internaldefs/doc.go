// Package internaldefs holds the shared counter definition table used by the
// metric exporters. It exists so exporter backends agree on names and help
// strings without duplicating the list.
package internaldefs
