// Package extract turns stored device pages into structured DeviceInfo
// values.
//
// The catalog marks each specification cell with a data-spec attribute.
// Device reads the model name heading and the status, os, models and price
// cells of one page. All runs Device over many records with a bounded number
// of goroutines and keeps the input order.
//
// Extraction works on stored HTML only and never touches the network.
package extract
