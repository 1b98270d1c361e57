// Package entities provides the value types exchanged between the host and
// the embedded runtime: conversion requests, fallible results and the
// interop call/value representation.
//
// Every type here is a transient value. Nothing is cached or shared across
// calls.
package entities
