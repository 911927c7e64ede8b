// Package meas holds the sensor side of the model: channel metadata
// (Info), rigid coordinate transforms, and the three measurement
// containers forward application and import produce - Evoked (averaged),
// Raw (continuous) and Epochs (segmented).
//
// Containers are plain typed structs; they do no I/O and no unit
// conversion. Channel order is significant everywhere: the rows of a gain
// matrix and of every container's data block follow Info.Channels.
package meas
