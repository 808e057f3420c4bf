/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension keeps a single configuration entity, stored under
"_c:<package name>". It is loaded from the genesis file at initialization
time and may later be patched by the configuration owner using
UpdateConfigurationHandler.
*/
package gconf
