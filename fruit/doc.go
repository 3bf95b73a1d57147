/*

Package fruit is a small resource API: fruit records with a name and
a stock count, kept in memory and keyed by an id that must start
with "f".

Register binds the five endpoints to an npoint.Service:

	GET    /fruit       list everything
	GET    /fruit/{id}  one fruit or 404
	POST   /fruit/{id}  create, 201 or a validation problem if the id is taken
	PUT    /fruit/{id}  create or replace, 204
	DELETE /fruit/{id}  remove, 204

The id is checked by a filter, not by the handlers or the Store.

*/
package fruit
