// Package services holds the application services that sit between the HTTP
// transport and the dataset/aggregate packages. The dataset service owns the
// in-memory cleaned dataset and serves filtered views of it.
package services
