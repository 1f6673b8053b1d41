// Package request manages employee requests for devices.
//
// A request names one device and one employee and carries a free-text
// reason. It is created pending; the status setter here is deliberately
// low level and performs no transition checks, because only the lifecycle
// coordinator can see allocation state:
//
//	pending ──approve──► approved ──return──► completed
//	   │
//	   └──reject──► rejected
//
// Device and employee references never change after creation.
package request
